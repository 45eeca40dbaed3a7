package middleware

import (
	"bytes"
	"io"
	"net/http"

	"github.com/klauspost/compress/zstd"

	"github.com/truesight/shared-go/errortypes"
)

// ZstdMaxDecompressedBytes bounds how large a decompressed body is allowed
// to grow to, guarding against decompression-bomb payloads.
const ZstdMaxDecompressedBytes = 4 * 1024 * 1024

var zstdDecoder *zstd.Decoder

func init() {
	d, err := zstd.NewReader(nil)
	if err != nil {
		panic(err)
	}
	zstdDecoder = d
}

// ZstdDecode transparently decompresses a zstd-encoded request body. A
// request without a "Content-Encoding: zstd" header passes through
// unchanged. This must run before any handler reads the body or any
// middleware keys off its size.
func ZstdDecode(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Content-Encoding") != "zstd" {
			next.ServeHTTP(w, r)
			return
		}

		compressed, err := io.ReadAll(io.LimitReader(r.Body, ZstdMaxDecompressedBytes+1))
		if err != nil {
			errortypes.WriteJSON(w, errortypes.New(errortypes.CodeValidation, "failed to read request body"))
			return
		}

		decompressed, err := zstdDecoder.DecodeAll(compressed, nil)
		if err != nil {
			errortypes.WriteJSON(w, errortypes.New(errortypes.CodeValidation, "failed to decompress zstd body"))
			return
		}
		if len(decompressed) > ZstdMaxDecompressedBytes {
			errortypes.WriteJSON(w, errortypes.New(errortypes.CodePayloadTooLarge, "decompressed body exceeds maximum size"))
			return
		}

		r.Header.Del("Content-Encoding")
		r.Body = io.NopCloser(bytes.NewReader(decompressed))
		r.ContentLength = int64(len(decompressed))
		next.ServeHTTP(w, r)
	})
}
