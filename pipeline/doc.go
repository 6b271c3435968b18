// Package pipeline implements the staged processing core: a fixed chain of
// Input, Transform and Output stages, format adapters that parse one native
// input shape into the chain, and a Manager that orchestrates adapters.
//
// Recoverable conditions are represented as data. The input and transform
// stages mark a Record invalid instead of failing, and adapters turn parse
// failures into "[ERROR] ..." report strings. The only catch-all boundary is
// Instance.RunStages: an error or panic raised by a stage aborts the chain,
// increments the error counter and is returned as a CHAIN_FATAL AppError next
// to a "[ERROR] Stage failed: ..." report.
//
// # Usage
//
//	mgr := pipeline.NewManager()
//	mgr.AddPipeline(pipeline.NewJSONAdapter("JSON_001"))
//	mgr.AddPipeline(pipeline.NewCSVAdapter("CSV_001", ','))
//	mgr.AddPipeline(pipeline.NewStreamAdapter("STREAM_001"))
//
//	reports := mgr.ProcessData(ctx, map[string]any{"sensor": "temp", "value": 23.5})
//	last, err := mgr.ChainPipelines(ctx, map[string]any{"sensor": "temp"})
package pipeline
