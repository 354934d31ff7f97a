package models

import "fmt"

const (
	SourceInclude  = "include resource"
	SourceResource = "locale resource"
)

// Warning is a non-fatal content issue found while building a module.
type Warning struct {
	Source  string
	File    string
	Message string
}

func (w Warning) String() string {
	return fmt.Sprintf("Warning: (%s) %s", w.Source, w.Message)
}
