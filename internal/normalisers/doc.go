// Package normalisers extracts text from uploaded files. Each subpackage
// handles one format; Registry picks among them by MIME type.
package normalisers
