// Package payload turns run configurations into ordered typing plans.
//
// File transfers are base64 encoded and wrapped in a shell (Linux) or batch
// (Windows) script that rebuilds the file on the target when typed into a
// terminal. Chunk sizes and command layout are part of the output contract.
package payload

import (
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"strings"
	"unicode/utf8"
)

const (
	// ChunkSizeLinux is the number of base64 characters per echo line on Linux
	ChunkSizeLinux = 512

	// ChunkSizeWindows matches the 76-column line limit of certutil -decode
	ChunkSizeWindows = 76

	// windowsTempFile is the intermediate file name used by the batch script
	windowsTempFile = "tmp.b64"
)

// ErrEmptyPayload is returned when encoded data produces no chunks
var ErrEmptyPayload = errors.New("encoded data is empty")

// ValidationError reports a payload that cannot be built
type ValidationError struct {
	Path string
	Err  error
}

func (e *ValidationError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("payload: %s: %v", e.Path, e.Err)
	}
	return "payload: " + e.Err.Error()
}

func (e *ValidationError) Unwrap() error { return e.Err }

// EncodeFile reads a file and returns its standard base64 encoding
func EncodeFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", &ValidationError{Path: path, Err: err}
	}
	return base64.StdEncoding.EncodeToString(data), nil
}

// ChunkString splits s into pieces of size runes; the last piece may be shorter
func ChunkString(s string, size int) ([]string, error) {
	if size <= 0 {
		return nil, fmt.Errorf("chunk size must be positive, got %d", size)
	}

	chunks := make([]string, 0, utf8.RuneCountInString(s)/size+1)
	for len(s) > 0 {
		end, n := 0, 0
		for end < len(s) && n < size {
			_, w := utf8.DecodeRuneInString(s[end:])
			end += w
			n++
		}
		chunks = append(chunks, s[:end])
		s = s[end:]
	}
	return chunks, nil
}

// LinuxReconstructionScript renders the shell commands that rebuild output
// from encoded via an intermediate <output>.b64 file
func LinuxReconstructionScript(encoded, output string) (string, error) {
	chunks, err := nonEmptyChunks(encoded, ChunkSizeLinux)
	if err != nil {
		return "", err
	}

	tmp := output + ".b64"
	lines := make([]string, 0, len(chunks)+2)
	lines = append(lines, fmt.Sprintf("echo -n %s > %s", chunks[0], tmp))
	for _, chunk := range chunks[1:] {
		lines = append(lines, fmt.Sprintf("echo -n %s >> %s", chunk, tmp))
	}
	lines = append(lines,
		fmt.Sprintf("base64 -d %s > %s", tmp, output),
		"rm "+tmp,
	)
	return strings.Join(lines, "\n") + "\n", nil
}

// WindowsReconstructionScript renders the cmd.exe commands that rebuild
// output from encoded using certutil
func WindowsReconstructionScript(encoded, output string) (string, error) {
	chunks, err := nonEmptyChunks(encoded, ChunkSizeWindows)
	if err != nil {
		return "", err
	}

	lines := make([]string, 0, len(chunks)+2)
	lines = append(lines, fmt.Sprintf("echo %s>%s", chunks[0], windowsTempFile))
	for _, chunk := range chunks[1:] {
		lines = append(lines, fmt.Sprintf("echo %s>>%s", chunk, windowsTempFile))
	}
	lines = append(lines,
		fmt.Sprintf("certutil -decode %s %s", windowsTempFile, output),
		"del "+windowsTempFile,
	)
	return strings.Join(lines, "\n") + "\n", nil
}

func nonEmptyChunks(encoded string, size int) ([]string, error) {
	chunks, err := ChunkString(encoded, size)
	if err != nil {
		return nil, err
	}
	if len(chunks) == 0 {
		return nil, ErrEmptyPayload
	}
	return chunks, nil
}
