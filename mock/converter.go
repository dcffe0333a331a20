package mock

import "github.com/fwojciec/devharvest"

var _ devharvest.Converter = (*Converter)(nil)

// Converter is a mock implementation of devharvest.Converter.
type Converter struct {
	ConvertFn func(html string) (string, error)
}

func (c *Converter) Convert(html string) (string, error) {
	return c.ConvertFn(html)
}
