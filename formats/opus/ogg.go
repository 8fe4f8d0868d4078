package opus

import (
	"encoding/binary"
	"errors"
	"io"
)

var (
	errBadCapture = errors.New("ogg: invalid capture pattern")
	errBadVersion = errors.New("ogg: unsupported version")
)

// pageHeader is the fixed part of an Ogg page plus its segment table.
type pageHeader struct {
	granulePos int64
	serial     uint32
	sequence   uint32
	segments   []uint8
}

// size returns the encoded header length in bytes.
func (h *pageHeader) size() int64 {
	return 27 + int64(len(h.segments))
}

// bodySize returns the page body length from the segment table.
func (h *pageHeader) bodySize() int64 {
	var n int64
	for _, s := range h.segments {
		n += int64(s)
	}
	return n
}

// parsePageHeader reads one Ogg page header.
func parsePageHeader(r io.Reader) (*pageHeader, error) {
	var buf [27]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return nil, err
	}
	if string(buf[0:4]) != "OggS" {
		return nil, errBadCapture
	}
	if buf[4] != 0 {
		return nil, errBadVersion
	}

	hdr := &pageHeader{
		granulePos: int64(binary.LittleEndian.Uint64(buf[6:14])),
		serial:     binary.LittleEndian.Uint32(buf[14:18]),
		sequence:   binary.LittleEndian.Uint32(buf[18:22]),
		// checksum at buf[22:26] is not validated
	}
	if n := buf[26]; n > 0 {
		hdr.segments = make([]uint8, n)
		if _, err := io.ReadFull(r, hdr.segments); err != nil {
			return nil, err
		}
	}
	return hdr, nil
}

// readPageBody splits a page body into whole packets using the lacing
// values: a packet ends at the first segment shorter than 255 bytes. A
// trailing run of 255-byte segments is a partial packet continuing on the
// next page and is returned separately.
func readPageBody(r io.Reader, hdr *pageHeader) (packets [][]byte, partial []byte, err error) {
	body := make([]byte, hdr.bodySize())
	if _, err := io.ReadFull(r, body); err != nil {
		return nil, nil, err
	}

	pos := 0
	start := 0
	for _, lace := range hdr.segments {
		pos += int(lace)
		if lace < 255 {
			packets = append(packets, body[start:pos])
			start = pos
		}
	}
	if start < len(body) {
		partial = body[start:]
	}
	return packets, partial, nil
}

// page is one demuxed Ogg page: the packets completed within it and the
// granule position at its end (-1 when no packet ends on the page).
type page struct {
	granulePos int64
	packets    [][]byte
}

// pageReader demuxes an Ogg stream page by page, joining packets that
// span page boundaries. Seeking and duration need a seekable stream;
// sequential reads work on any io.Reader.
type pageReader struct {
	r  io.Reader
	rs io.ReadSeeker // nil when the stream cannot seek

	offset      int64 // bytes consumed from r
	partial     []byte
	dataStart   int64 // first audio page, set after the header packets
	lastGranule int64
}

func newPageReader(r io.Reader) *pageReader {
	pr := &pageReader{r: r, lastGranule: -1}
	if rs, ok := r.(io.ReadSeeker); ok {
		pr.rs = rs
	}
	return pr
}

// readPage reads the next page, resolving continuation from the previous
// one. A page may complete zero packets when a large packet keeps
// spanning.
func (pr *pageReader) readPage() (*page, error) {
	hdr, err := parsePageHeader(pr.r)
	if err != nil {
		return nil, err
	}
	packets, partial, err := readPageBody(pr.r, hdr)
	if err != nil {
		return nil, err
	}
	pr.offset += hdr.size() + hdr.bodySize()

	if len(pr.partial) > 0 {
		if len(packets) > 0 {
			packets[0] = append(pr.partial, packets[0]...)
		} else if partial != nil {
			partial = append(pr.partial, partial...)
		}
	}
	pr.partial = partial

	return &page{granulePos: hdr.granulePos, packets: packets}, nil
}

// scanLastGranule walks the audio pages once to find the stream's final
// granule position, then restores the read position.
func (pr *pageReader) scanLastGranule() error {
	if pr.rs == nil {
		return errors.New("ogg: cannot scan an unseekable stream")
	}
	if _, err := pr.rs.Seek(pr.dataStart, io.SeekStart); err != nil {
		return err
	}

	last := int64(-1)
	for {
		hdr, err := parsePageHeader(pr.rs)
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				break
			}
			return err
		}
		if hdr.granulePos >= 0 {
			last = hdr.granulePos
		}
		if _, err := pr.rs.Seek(hdr.bodySize(), io.SeekCurrent); err != nil {
			return err
		}
	}

	if last < 0 {
		return errors.New("ogg: no granule positions in stream")
	}
	pr.lastGranule = last

	if _, err := pr.rs.Seek(pr.offset, io.SeekStart); err != nil {
		return err
	}
	return nil
}

// seekTo positions the reader at the first page containing the target
// granule and returns the granule at which decoding resumes, always at or
// before the target.
func (pr *pageReader) seekTo(target int64) (int64, error) {
	if pr.rs == nil {
		return 0, errors.New("ogg: cannot seek an unseekable stream")
	}
	if _, err := pr.rs.Seek(pr.dataStart, io.SeekStart); err != nil {
		return 0, err
	}
	pr.offset = pr.dataStart
	pr.partial = nil

	resume := int64(0)
	for {
		pageStart := pr.offset
		hdr, err := parsePageHeader(pr.rs)
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				// Past the last page: reads from here hit EOF.
				return resume, nil
			}
			return resume, err
		}

		if hdr.granulePos >= target {
			// Target lies within this page; rewind to its start.
			if _, err := pr.rs.Seek(pageStart, io.SeekStart); err != nil {
				return resume, err
			}
			pr.offset = pageStart
			return resume, nil
		}

		if hdr.granulePos >= 0 {
			resume = hdr.granulePos
		}
		if _, err := pr.rs.Seek(hdr.bodySize(), io.SeekCurrent); err != nil {
			return resume, err
		}
		pr.offset = pageStart + hdr.size() + hdr.bodySize()
	}
}
