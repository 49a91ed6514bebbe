package transport

import "errors"

var (
	// ErrAlreadyConnected is returned by Connect on a Transport that has
	// already begun connecting.
	ErrAlreadyConnected = errors.New("transport: already connected")
	// ErrNotConnected is returned by Write before Connected has fired.
	ErrNotConnected = errors.New("transport: not connected")
	// ErrClosed names a closed Transport. TCPTransport and WSTransport do
	// not return it: Write after close returns ErrNotConnected, and a
	// repeated Close/Abort returns nil.
	ErrClosed = errors.New("transport: closed")
)
