// Package processor provides single-value processors sharing one
// validate/process/format interface: Numeric for integer sequences, Text for
// strings and Log for {message, type} entries.
//
//	out := processor.Run(processor.Text{}, "Hello Nexus World")
//	// Processed text: 17 characters, 3 words
package processor
