// Package mapping describes how entity types map onto tables.
//
// Entities are configured through a fluent ModelBuilder: each call records
// intent on a mutable handle, and Build compiles the accumulated handle into an
// immutable EntityMapping. Compiled mappings are shared process-wide through a
// Cache that builds each entity at most once and never evicts it.
//
//	mb := mapping.NewModelBuilder()
//	mapping.Entity[Order](mb, func(e *mapping.EntityBuilder) {
//		e.ToTable("orders", "sales")
//		e.HasKey("TenantID", "OrderNo")
//		e.Property("OrderNo").HasSequence("order_no_seq")
//	})
//	m, err := mb.Build(reflect.TypeFor[Order]())
package mapping
