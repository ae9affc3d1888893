package cache

import (
	"bufio"
	"bytes"
	"io"
	"net/http"
)

// entryToBytes converts an entry to its HTTP/1.1 wire representation.
// Storing entries in this form means any tool that can read an HTTP response
// can inspect the stored bytes.
func entryToBytes(entry Entry) ([]byte, error) {
	res := http.Response{
		StatusCode:    entry.Status,
		ProtoMajor:    1,
		ProtoMinor:    1,
		Header:        entry.Header,
		Body:          io.NopCloser(bytes.NewReader(entry.Body)),
		ContentLength: int64(len(entry.Body)),
	}
	buf := &bytes.Buffer{}
	if err := res.Write(buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// bytesToEntry converts the HTTP/1.1 representation of a response back to an entry.
func bytesToEntry(b []byte) (Entry, error) {
	res, err := http.ReadResponse(bufio.NewReader(bytes.NewReader(b)), nil)
	if err != nil {
		return Entry{}, err
	}
	defer res.Body.Close()
	body, err := io.ReadAll(res.Body)
	if err != nil {
		return Entry{}, err
	}
	return Entry{
		Status: res.StatusCode,
		Header: res.Header,
		Body:   body,
	}, nil
}
