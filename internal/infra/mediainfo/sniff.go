package mediainfo

import (
	"io"

	"github.com/h2non/filetype"
	"github.com/sirupsen/logrus"
)

// sniffRecognized reads the file head and reports whether content sniffing
// recognizes any container type. An unreadable file counts as unrecognized;
// it will be flagged by the corruption heuristic, not crash the pipeline.
func (x *Extractor) sniffRecognized(path string) bool {
	f, err := x.fsys.Open(path)
	if err != nil {
		logrus.Debugf("mediainfo: sniff open %s: %v", path, err)
		return false
	}
	defer f.Close()

	head := make([]byte, 261)
	n, err := io.ReadFull(f, head)
	if err != nil && err != io.ErrUnexpectedEOF {
		return false
	}
	kind, err := filetype.Match(head[:n])
	if err != nil {
		return false
	}
	return kind != filetype.Unknown
}
