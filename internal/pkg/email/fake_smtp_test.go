package email

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"math/big"
	"net"
	"net/textproto"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type receivedMail struct {
	From string
	To   []string
	Data string
}

// fakeSMTP is a minimal in-process SMTP server. It offers STARTTLS only
// when tlsConfig is set.
type fakeSMTP struct {
	ln         net.Listener
	rejectRcpt bool
	silent     bool
	tlsConfig  *tls.Config

	mu          sync.Mutex
	messages    []receivedMail
	authSeen    bool
	tlsUsed     bool
	authOverTLS bool
}

// withSelfSignedTLS makes the server advertise STARTTLS with a throwaway
// certificate for 127.0.0.1.
func withSelfSignedTLS(t *testing.T) func(*fakeSMTP) {
	t.Helper()
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)
	tmpl := &x509.Certificate{
		SerialNumber: big.NewInt(1),
		Subject:      pkix.Name{CommonName: "fake.smtp"},
		IPAddresses:  []net.IP{net.ParseIP("127.0.0.1")},
		NotBefore:    time.Now().Add(-time.Hour),
		NotAfter:     time.Now().Add(time.Hour),
		KeyUsage:     x509.KeyUsageDigitalSignature,
		ExtKeyUsage:  []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
	}
	der, err := x509.CreateCertificate(rand.Reader, tmpl, tmpl, &key.PublicKey, key)
	require.NoError(t, err)
	cfg := &tls.Config{
		Certificates: []tls.Certificate{{Certificate: [][]byte{der}, PrivateKey: key}},
	}
	return func(f *fakeSMTP) { f.tlsConfig = cfg }
}

func startFakeSMTP(t *testing.T, configure ...func(*fakeSMTP)) *fakeSMTP {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	srv := &fakeSMTP{ln: ln}
	for _, c := range configure {
		c(srv)
	}
	go srv.serve()
	t.Cleanup(func() { ln.Close() })
	return srv
}

func (f *fakeSMTP) Host() string {
	return f.ln.Addr().(*net.TCPAddr).IP.String()
}

func (f *fakeSMTP) Port() int {
	return f.ln.Addr().(*net.TCPAddr).Port
}

func (f *fakeSMTP) Messages() []receivedMail {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]receivedMail, len(f.messages))
	copy(out, f.messages)
	return out
}

func (f *fakeSMTP) AuthSeen() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.authSeen
}

func (f *fakeSMTP) TLSUsed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.tlsUsed
}

func (f *fakeSMTP) AuthOverTLS() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.authOverTLS
}

func (f *fakeSMTP) serve() {
	for {
		conn, err := f.ln.Accept()
		if err != nil {
			return
		}
		go f.handle(conn)
	}
}

func addrArg(line string) string {
	if i := strings.Index(line, "<"); i >= 0 {
		if j := strings.Index(line[i:], ">"); j > 0 {
			return line[i+1 : i+j]
		}
	}
	return ""
}

func (f *fakeSMTP) handle(conn net.Conn) {
	defer conn.Close()
	if f.silent {
		// hold the connection open without a greeting
		buf := make([]byte, 1)
		_, _ = conn.Read(buf)
		return
	}

	tp := textproto.NewConn(conn)
	_ = tp.PrintfLine("220 fake.smtp ESMTP ready")

	var cur receivedMail
	secure := false
	for {
		line, err := tp.ReadLine()
		if err != nil {
			return
		}
		cmd := strings.ToUpper(line)

		switch {
		case strings.HasPrefix(cmd, "EHLO"), strings.HasPrefix(cmd, "HELO"):
			_ = tp.PrintfLine("250-fake.smtp greets you")
			if f.tlsConfig != nil && !secure {
				_ = tp.PrintfLine("250-STARTTLS")
			}
			_ = tp.PrintfLine("250 AUTH PLAIN")
		case cmd == "STARTTLS":
			if f.tlsConfig == nil || secure {
				_ = tp.PrintfLine("502 command not implemented")
				continue
			}
			_ = tp.PrintfLine("220 2.0.0 Ready to start TLS")
			tlsConn := tls.Server(conn, f.tlsConfig)
			if err := tlsConn.Handshake(); err != nil {
				return
			}
			tp = textproto.NewConn(tlsConn)
			secure = true
			f.mu.Lock()
			f.tlsUsed = true
			f.mu.Unlock()
		case strings.HasPrefix(cmd, "AUTH"):
			f.mu.Lock()
			f.authSeen = true
			f.authOverTLS = secure
			f.mu.Unlock()
			_ = tp.PrintfLine("235 2.7.0 Authentication successful")
		case strings.HasPrefix(cmd, "MAIL FROM"):
			cur = receivedMail{From: addrArg(line)}
			_ = tp.PrintfLine("250 OK")
		case strings.HasPrefix(cmd, "RCPT TO"):
			if f.rejectRcpt {
				_ = tp.PrintfLine("550 5.1.1 mailbox unavailable")
				continue
			}
			cur.To = append(cur.To, addrArg(line))
			_ = tp.PrintfLine("250 OK")
		case cmd == "DATA":
			_ = tp.PrintfLine("354 End data with <CR><LF>.<CR><LF>")
			data, err := tp.ReadDotBytes()
			if err != nil {
				return
			}
			cur.Data = string(data)
			f.mu.Lock()
			f.messages = append(f.messages, cur)
			f.mu.Unlock()
			_ = tp.PrintfLine("250 OK queued")
		case cmd == "RSET", cmd == "NOOP":
			_ = tp.PrintfLine("250 OK")
		case cmd == "QUIT":
			_ = tp.PrintfLine("221 Bye")
			return
		default:
			_ = tp.PrintfLine("502 command not implemented")
		}
	}
}
