// Package pkg provides the core libraries for amplify data augmentation.
//
// # Overview
//
// Amplify grows small training sets. Tabular data gains synthetic rows that
// resemble the originals; image corpora gain randomly transformed copies. The
// pkg directory is organized into three main areas:
//
//  1. Core - [table], [synth], [augment] and [rng]: pure, seed-driven
//     algorithms with no I/O
//  2. Infrastructure - [io], [workspace], [cache], [config], [observability]
//  3. Orchestration - [pipeline] (decode → core → encode, with caching)
//
// # Architecture
//
// The typical data flow through amplify:
//
//	CSV file                         zip archive
//	   ↓                                 ↓
//	[io.ReadCSV]                  [io.ExtractArchive] + [io.DecodeImage]
//	   ↓                                 ↓
//	[synth.Expand]                  [augment.Batch]
//	   ↓                                 ↓
//	[io.WriteCSV]                 [io.EncodeImage] + [io.WriteArchive]
//
// # Quick Start
//
// Expand a table to 1000 rows with a fixed seed:
//
//	import (
//	    "github.com/matzehuels/amplify/pkg/rng"
//	    "github.com/matzehuels/amplify/pkg/synth"
//	)
//
//	out, err := synth.Expand(t, 1000, rng.New(42), nil)
//
// Or let the pipeline handle decoding, caching and encoding:
//
//	runner := pipeline.NewRunner(nil, nil, logger)
//	res, err := runner.Expand(ctx, csvBytes, pipeline.ExpandOptions{Rows: 1000, Seed: 42})
//
// [table]: https://pkg.go.dev/github.com/matzehuels/amplify/pkg/table
// [synth]: https://pkg.go.dev/github.com/matzehuels/amplify/pkg/synth
// [augment]: https://pkg.go.dev/github.com/matzehuels/amplify/pkg/augment
// [rng]: https://pkg.go.dev/github.com/matzehuels/amplify/pkg/rng
// [io]: https://pkg.go.dev/github.com/matzehuels/amplify/pkg/io
// [workspace]: https://pkg.go.dev/github.com/matzehuels/amplify/pkg/workspace
// [cache]: https://pkg.go.dev/github.com/matzehuels/amplify/pkg/cache
// [config]: https://pkg.go.dev/github.com/matzehuels/amplify/pkg/config
// [observability]: https://pkg.go.dev/github.com/matzehuels/amplify/pkg/observability
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/amplify/pkg/pipeline
package pkg
