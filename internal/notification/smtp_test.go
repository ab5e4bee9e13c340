package notification

import (
	"context"
	"net"
	"net/textproto"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// silentSMTPServer accepts connections and never writes a greeting.
func silentSMTPServer(t *testing.T) (string, int) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	var mu sync.Mutex
	var conns []net.Conn
	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			mu.Lock()
			conns = append(conns, conn)
			mu.Unlock()
		}
	}()
	t.Cleanup(func() {
		ln.Close()
		mu.Lock()
		defer mu.Unlock()
		for _, c := range conns {
			c.Close()
		}
	})

	addr := ln.Addr().(*net.TCPAddr)
	return addr.IP.String(), addr.Port
}

// scriptedSMTPServer speaks just enough SMTP for one delivery and hands back the DATA payload.
func scriptedSMTPServer(t *testing.T) (string, int, <-chan string) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { ln.Close() })

	received := make(chan string, 1)
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		tp := textproto.NewConn(conn)
		_ = tp.PrintfLine("220 localhost ESMTP")
		for {
			line, err := tp.ReadLine()
			if err != nil {
				return
			}
			cmd := strings.ToUpper(line)
			switch {
			case strings.HasPrefix(cmd, "EHLO"):
				_ = tp.PrintfLine("250-localhost")
				_ = tp.PrintfLine("250 8BITMIME")
			case strings.HasPrefix(cmd, "HELO"), strings.HasPrefix(cmd, "MAIL"), strings.HasPrefix(cmd, "RCPT"):
				_ = tp.PrintfLine("250 OK")
			case cmd == "DATA":
				_ = tp.PrintfLine("354 End data with <CR><LF>.<CR><LF>")
				lines, err := tp.ReadDotLines()
				if err != nil {
					return
				}
				received <- strings.Join(lines, "\n")
				_ = tp.PrintfLine("250 queued")
			case cmd == "QUIT":
				_ = tp.PrintfLine("221 bye")
				return
			default:
				_ = tp.PrintfLine("502 not implemented")
			}
		}
	}()

	addr := ln.Addr().(*net.TCPAddr)
	return addr.IP.String(), addr.Port, received
}

func TestSMTPMailer_Delivers(t *testing.T) {
	host, port, received := scriptedSMTPServer(t)
	mailer := NewSMTPMailer(SMTPConfig{
		Host:      host,
		Port:      port,
		FromEmail: "noreply@projexa.com",
		FromName:  "Projexa Store",
		Timeout:   5 * time.Second,
	}, quietLogger())

	err := mailer.Send(context.Background(), Mail{To: "a@x.io", Subject: "Order Confirmation - Order #7", HTML: "<p>hi</p>"})
	require.NoError(t, err)

	select {
	case data := <-received:
		assert.Contains(t, data, "Subject: Order Confirmation - Order #7")
		assert.Contains(t, data, "To: a@x.io")
		assert.Contains(t, data, "<p>hi</p>")
	case <-time.After(5 * time.Second):
		t.Fatal("server never received the message")
	}
}

func TestSMTPMailer_UnresponsiveServerTimesOut(t *testing.T) {
	host, port := silentSMTPServer(t)
	mailer := NewSMTPMailer(SMTPConfig{Host: host, Port: port, Timeout: 200 * time.Millisecond}, quietLogger())

	start := time.Now()
	err := mailer.Send(context.Background(), Mail{To: "a@x.io", Subject: "s", HTML: "b"})
	assert.Error(t, err)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestSMTPMailer_CancelAbortsExchange(t *testing.T) {
	host, port := silentSMTPServer(t)
	mailer := NewSMTPMailer(SMTPConfig{Host: host, Port: port, Timeout: time.Minute}, quietLogger())

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(100*time.Millisecond, cancel)

	start := time.Now()
	err := mailer.Send(ctx, Mail{To: "a@x.io", Subject: "s", HTML: "b"})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Less(t, time.Since(start), 2*time.Second)
}
