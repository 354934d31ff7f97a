package esbuildplugin

import (
	"strings"

	"github.com/evanw/esbuild/pkg/api"
)

// assetPlugins are name fragments of plugins that claim arbitrary files.
var assetPlugins = []string{"file", "asset", "copy", "url"}

// Register adds plugin to opts ahead of the first asset handling plugin, or
// last when there is none. A plugin with the same name is replaced.
func Register(opts *api.BuildOptions, plugin api.Plugin) {
	plugins := make([]api.Plugin, 0, len(opts.Plugins)+1)
	for _, p := range opts.Plugins {
		if p.Name != plugin.Name {
			plugins = append(plugins, p)
		}
	}

	at := len(plugins)
	for i, p := range plugins {
		if isAssetPlugin(p.Name) {
			at = i
			break
		}
	}

	plugins = append(plugins, api.Plugin{})
	copy(plugins[at+1:], plugins[at:])
	plugins[at] = plugin
	opts.Plugins = plugins
}

func isAssetPlugin(name string) bool {
	name = strings.ToLower(name)
	for _, fragment := range assetPlugins {
		if strings.Contains(name, fragment) {
			return true
		}
	}
	return false
}
