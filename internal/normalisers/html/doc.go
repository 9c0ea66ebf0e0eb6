// Package html provides a Normaliser for HTML documents. It walks the
// token stream, dropping scripts, styles and comments, and emits one line
// per block element.
package html
