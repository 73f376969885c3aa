package probe

import (
	"net"

	"github.com/pires/go-proxyproto"
)

// encodeProxyHeader renders the PROXY protocol v1 or v2 preamble. The
// preamble always declares a loopback hop (127.0.0.1:80 on both ends):
// the backend behind a proxy-aware listener needs a well-formed header,
// not real endpoint addresses.
func encodeProxyHeader(version int) ([]byte, error) {
	loopback := &net.TCPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 80}
	header := proxyproto.HeaderProxyFromAddrs(byte(version), loopback, loopback)
	return header.Format()
}
