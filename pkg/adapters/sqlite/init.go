package sqlite

import "github.com/leapstack-labs/leaporm/pkg/adapter"

func init() {
	adapter.Register(New())
}
