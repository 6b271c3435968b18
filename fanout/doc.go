// Package fanout runs a fixed set of independent units with bounded
// concurrency while keeping results aligned with the input order.
//
// Each unit writes only its own result slot. A unit that fails or panics
// records that in its slot and never cancels or blocks its siblings.
//
//	results := fanout.Run(ctx, 4, handlers, func(ctx context.Context, i int, h Handler) (string, error) {
//	    return h.ProcessBatch(ctx, batch)
//	})
package fanout
