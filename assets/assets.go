// Package assets embeds the default raw-resource bundle: the filter
// database scripts and application.properties.
package assets

import (
	"embed"

	"github.com/minios-linux/cbres/rawres"
)

// RawDir is the directory inside FS holding the raw resources.
const RawDir = "raw"

//go:embed raw/*
var FS embed.FS

// Raw returns a store over the embedded bundle.
func Raw() *rawres.Store {
	s, err := rawres.NewStore(FS, RawDir)
	if err != nil {
		// The directory is compiled in; failure means a broken build.
		panic(err)
	}
	return s
}
