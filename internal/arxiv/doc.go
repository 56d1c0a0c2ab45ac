// Package arxiv talks to the arXiv endpoints: the e-print endpoint for
// source archives and the export API for paper metadata.
package arxiv
