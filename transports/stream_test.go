package transports

import (
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"

	"github.com/rotor-go/rotor"
)

// recordingProtocol captures every callback Stream.Ready invokes, enough to
// assert on the drain-then-fill-then-flush ordering stream.go documents.
type recordingProtocol struct {
	received    [][]byte
	transferred int
	eof         bool
	errs        []error
	echo        bool
}

func (p *recordingProtocol) DataReceived(t *Transport) error {
	data := append([]byte(nil), t.Peek()...)
	p.received = append(p.received, data)
	t.Consume(len(data))
	if p.echo {
		_, err := t.Write(data)
		return err
	}
	return nil
}

func (p *recordingProtocol) DataTransferred(*Transport) error {
	p.transferred++
	return nil
}

func (p *recordingProtocol) EOFReceived(*Transport) { p.eof = true }

func (p *recordingProtocol) ErrorHappened(err error) { p.errs = append(p.errs, err) }

func socketpair(t *testing.T) (a, b int) {
	t.Helper()
	fds, err := unix.Socketpair(unix.AF_UNIX, unix.SOCK_STREAM|unix.SOCK_NONBLOCK, 0)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = unix.Close(fds[0])
		_ = unix.Close(fds[1])
	})
	return fds[0], fds[1]
}

func TestStreamReadsAndEchoes(t *testing.T) {
	local, peer := socketpair(t)

	stream := NewStream(local)
	proto := &recordingProtocol{echo: true}

	_, err := unix.Write(peer, []byte("hello"))
	require.NoError(t, err)

	eof, err := stream.Ready(rotor.EventRead, proto)
	require.NoError(t, err)
	require.False(t, eof)
	require.Equal(t, [][]byte{[]byte("hello")}, proto.received)

	buf := make([]byte, 16)
	n, err := unix.Read(peer, buf)
	require.NoError(t, err)
	require.Equal(t, "hello", string(buf[:n]))
	require.Equal(t, 1, proto.transferred)
}

func TestStreamReportsEOF(t *testing.T) {
	local, peer := socketpair(t)
	require.NoError(t, unix.Shutdown(peer, unix.SHUT_WR))

	stream := NewStream(local)
	proto := &recordingProtocol{}

	eof, err := stream.Ready(rotor.EventRead, proto)
	require.NoError(t, err)
	require.True(t, eof)
	require.True(t, proto.eof)
}

func TestStreamWriteWouldBlockLeavesBufferIntact(t *testing.T) {
	local, _ := socketpair(t)
	stream := NewStream(local)
	proto := &recordingProtocol{}

	stream.out.WriteString("queued")
	stream.writable = false

	eof, err := stream.Ready(0, proto)
	require.NoError(t, err)
	require.False(t, eof)
	require.Equal(t, "queued", stream.out.String())
}
