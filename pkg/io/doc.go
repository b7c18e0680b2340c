// Package io converts between amplify's in-memory values and their on-disk
// forms: CSV tables, raster images and zip archives.
//
// # Tables
//
// [ReadCSV] decodes a header row followed by data rows. A column is numeric
// when every non-empty cell parses as a floating-point number and at least
// one does; empty cells in a numeric column become NaN. Every other column is
// read as text. [WriteCSV] writes the header and rows back, formatting
// numbers in their shortest round-trip form and NaN as an empty cell.
//
// # Images
//
// [DecodeImage] accepts PNG, JPEG and GIF through imaging, plus WebP, BMP and
// TIFF through golang.org/x/image, and applies EXIF orientation. [Canonical]
// drops the alpha channel so the result satisfies the augmenter's opaque
// input form. [EncodeImage] writes JPEG or PNG.
//
// # Archives
//
// [ExtractArchive] unpacks a zip file into a directory and refuses entries
// whose names would land outside it. [CollectImages] walks a directory for
// image files. [WriteArchive] packages named blobs into a deflate-compressed
// zip.
package io
