package output

import (
	"github.com/itohio/waterqm/pkg/alert"
	"github.com/itohio/waterqm/pkg/link"
)

// Output publishes received samples and the alerts they raised.
type Output interface {
	Publish(link.Sample, []alert.Alert) error
	Close() error
}

// helper constructors are in subpackages
