// Package report persists scenario reports.
//
// The FileRepository stores the reports of the last run as JSON on disk.
// JSON is produced through protojson over a structpb.Struct so the file
// has the same shape as the documents served over gRPC.
package report
