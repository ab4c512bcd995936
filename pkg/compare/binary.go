package compare

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/sdejongh/syncreplica/pkg/storage"
)

// BinaryComparator compares files byte-by-byte.
// Only a size mismatch short-circuits; timestamps are never consulted.
type BinaryComparator struct {
	bufferSize    int
	bufferPool    *sync.Pool
	readerWrapper ReaderWrapper
}

// NewBinaryComparator creates a new byte-by-byte comparator
func NewBinaryComparator(bufferSize int) *BinaryComparator {
	if bufferSize < 4096 {
		bufferSize = 4096
	}
	return &BinaryComparator{
		bufferSize: bufferSize,
		bufferPool: &sync.Pool{
			New: func() interface{} {
				buf := make([]byte, bufferSize)
				return &buf
			},
		},
	}
}

// SetReaderWrapper sets a function to wrap readers (e.g., for rate limiting)
func (c *BinaryComparator) SetReaderWrapper(wrapper ReaderWrapper) {
	c.readerWrapper = wrapper
}

// Compare compares two files byte-by-byte
func (c *BinaryComparator) Compare(ctx context.Context, source, dest storage.Backend, sourcePath, destPath string) (*Comparison, error) {
	sourceInfo, err := source.Stat(ctx, sourcePath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat source: %w", err)
	}

	destInfo, err := dest.Stat(ctx, destPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat destination: %w", err)
	}

	result := &Comparison{
		SourcePath: sourcePath,
		DestPath:   destPath,
	}

	// Quick check: if sizes differ, files are different
	if sourceInfo.Size != destInfo.Size {
		result.Result = Different
		result.Reason = fmt.Sprintf("size mismatch: source=%d, dest=%d", sourceInfo.Size, destInfo.Size)
		return result, nil
	}

	sourceReader, err := source.Read(ctx, sourcePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open source file: %w", err)
	}
	defer sourceReader.Close()

	destReader, err := dest.Read(ctx, destPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open destination file: %w", err)
	}
	defer destReader.Close()

	var sourceStream io.Reader = sourceReader
	var destStream io.Reader = destReader
	if c.readerWrapper != nil {
		sourceStream = c.readerWrapper(sourceReader)
		destStream = c.readerWrapper(destReader)
	}

	sourceBufPtr := c.bufferPool.Get().(*[]byte)
	defer c.bufferPool.Put(sourceBufPtr)
	sourceBuf := *sourceBufPtr

	destBufPtr := c.bufferPool.Get().(*[]byte)
	defer c.bufferPool.Put(destBufPtr)
	destBuf := *destBufPtr

	var bytesCompared int64

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		sourceN, sourceErr := io.ReadFull(sourceStream, sourceBuf)
		destN, destErr := io.ReadFull(destStream, destBuf)

		if sourceErr != nil && !isEOF(sourceErr) {
			return nil, fmt.Errorf("failed to read source: %w", sourceErr)
		}
		if destErr != nil && !isEOF(destErr) {
			return nil, fmt.Errorf("failed to read destination: %w", destErr)
		}

		n := sourceN
		if destN < n {
			n = destN
		}
		if !bytes.Equal(sourceBuf[:n], destBuf[:n]) {
			offset := bytesCompared
			for i := 0; i < n; i++ {
				if sourceBuf[i] != destBuf[i] {
					offset += int64(i)
					break
				}
			}
			result.Result = Different
			result.Reason = fmt.Sprintf("binary content differs at byte offset %d", offset)
			return result, nil
		}

		// Files may have changed size since Stat
		if sourceN != destN {
			result.Result = Different
			result.Reason = fmt.Sprintf("length differs after %d bytes", bytesCompared+int64(n))
			return result, nil
		}

		bytesCompared += int64(n)

		if sourceErr != nil {
			break // both ended at the same offset
		}
	}

	result.Result = Same
	result.Reason = fmt.Sprintf("binary content matches (%d bytes)", bytesCompared)
	return result, nil
}

// Name returns the comparator name
func (c *BinaryComparator) Name() string {
	return "binary"
}

func isEOF(err error) bool {
	return errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF)
}
