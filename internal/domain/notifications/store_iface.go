package notifications

import "context"

type StoreAPI interface {
	RecordDelivery(ctx context.Context, d Delivery) error
	ListDeliveries(ctx context.Context, recipient string, limit, offset int) ([]Delivery, error)
}
