package repositories

import (
	"io"

	"github.com/vsinha/lotalloc/pkg/domain/entities"
)

// RecordReader reads unparsed inventory and order rows from one tabular format
type RecordReader interface {
	ReadInventory(r io.Reader) ([]entities.LotRecord, error)
	ReadOrders(r io.Reader) ([]entities.OrderRecord, error)
}
