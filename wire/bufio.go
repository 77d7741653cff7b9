package wire

import (
	"bufio"
	"io"
)

// bufioReaderOf returns r itself if it already supports Peek, otherwise
// wraps it in a bufio.Reader. Deserialize needs to peek a single byte to
// detect the segwit marker without consuming it on a non-witness read.
func bufioReaderOf(r io.Reader) *bufio.Reader {
	if br, ok := r.(*bufio.Reader); ok {
		return br
	}
	return bufio.NewReader(r)
}
