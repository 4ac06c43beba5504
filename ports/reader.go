package ports

import (
	"gridstat/domain/dataset"
)

// TableReader ingests an external file into a numeric table. Non-numeric and
// empty cells become missing markers; the engines never see the file format.
type TableReader interface {
	Read(path string) (*dataset.Table, error)
}
