package opus

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/llehouerou/ripple/audio"
	"github.com/llehouerou/ripple/decoder"
	"github.com/llehouerou/ripple/source"
)

func TestOpus_OpenParsesHead(t *testing.T) {
	data := buildOpusStream(312, 2, []int64{48000 + 312, 96000 + 312})
	dec := New(source.NewMemory(data))

	format, err := dec.Open()
	require.NoError(t, err)
	defer dec.Close()

	assert.Equal(t, 48000, format.SampleRate)
	assert.Equal(t, 2, format.Channels)

	// Duration excludes the encoder pre-skip.
	assert.EqualValues(t, 96000, dec.TotalFrames())
	assert.EqualValues(t, 0, dec.CurrentFrame())
	assert.True(t, dec.Seekable())
}

func TestOpus_OpenGarbage(t *testing.T) {
	dec := New(source.NewMemory([]byte("not an ogg stream at all, kept long enough")))
	_, err := dec.Open()
	require.Error(t, err)
	assert.ErrorIs(t, err, audio.ErrFormat)
}

func TestOpus_OpenWrongCodec(t *testing.T) {
	// A valid Ogg page whose first packet is not OpusHead.
	pg := rawPage(0, []uint8{30})
	dec := New(source.NewMemory(pg))
	_, err := dec.Open()
	assert.ErrorIs(t, err, errNoOpusHead)
}

func TestOpus_SeekFrameBookkeeping(t *testing.T) {
	const preSkip = 312
	data := buildOpusStream(preSkip, 2, []int64{
		48000 + preSkip, 96000 + preSkip, 144000 + preSkip,
	})
	dec := New(source.NewMemory(data))
	_, err := dec.Open()
	require.NoError(t, err)
	defer dec.Close()

	landed, err := dec.SeekFrame(96000)
	require.NoError(t, err)
	assert.EqualValues(t, 96000, landed)
	assert.EqualValues(t, 96000, dec.CurrentFrame())

	// Past-the-end targets clamp to the stream length.
	landed, err = dec.SeekFrame(1 << 40)
	require.NoError(t, err)
	assert.EqualValues(t, 144000, landed)
}

func TestOpus_NonSeekableSource(t *testing.T) {
	data := buildOpusStream(0, 1, []int64{48000})
	dec := New(source.NewStream(source.NewMemory(data)))

	format, err := dec.Open()
	require.NoError(t, err)
	defer dec.Close()

	assert.Equal(t, 1, format.Channels)
	assert.False(t, dec.Seekable())
	assert.EqualValues(t, -1, dec.TotalFrames())

	_, err = dec.SeekFrame(100)
	assert.ErrorIs(t, err, audio.ErrNotSeekable)
}

func TestOpus_Registered(t *testing.T) {
	if _, ok := decoder.Lookup(".opus"); !ok {
		t.Error(".opus not registered")
	}
}
