package resources

import (
	"embed"
	"fmt"
	"sync"

	"fyne.io/fyne/v2"
)

const (
	logoDir  = "logo/"
	bellsDir = "bells/"
)

// Logo file names.
const (
	LogoApp    = "logo.svg"
	LogoActive = "logo_active.svg"
	LogoPaused = "logo_paused.svg"
)

//go:embed logo/*.svg
var logoFS embed.FS

//go:embed bells/bells.yaml
var bellsFS embed.FS

var logoCache sync.Map

// Logo returns a Fyne resource for the given logo file.
func Logo(fileName string) (fyne.Resource, error) {
	return loadResource(logoFS, logoDir+fileName, &logoCache)
}

// MustLogo returns a Fyne resource or panics on error.
func MustLogo(fileName string) fyne.Resource {
	resource, err := Logo(fileName)
	if err != nil {
		panic(err)
	}
	return resource
}

// BellTable returns the embedded bell preset catalog.
func BellTable() ([]byte, error) {
	data, err := bellsFS.ReadFile(bellsDir + "bells.yaml")
	if err != nil {
		return nil, fmt.Errorf("load bell table: %w", err)
	}
	return data, nil
}

func loadResource(fs embed.FS, path string, cache *sync.Map) (fyne.Resource, error) {
	if cached, ok := cache.Load(path); ok {
		return cached.(fyne.Resource), nil
	}

	data, err := fs.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load resource %s: %w", path, err)
	}

	resource := fyne.NewStaticResource(path, data)
	cache.Store(path, resource)
	return resource, nil
}
