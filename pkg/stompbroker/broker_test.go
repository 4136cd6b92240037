// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package stompbroker

import (
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/hostrpc/pkg/stomp"
)

// frameReader reads off conn, accumulating bytes until a full frame
// decodes, mirroring the buffering loop the reactor client itself
// uses on incoming traffic.
type frameReader struct {
	conn net.Conn
	buf  []byte
}

func (r *frameReader) next(t *testing.T, deadline time.Duration) *stomp.Frame {
	t.Helper()
	_ = r.conn.SetReadDeadline(time.Now().Add(deadline))
	chunk := make([]byte, 4096)
	for {
		f, consumed, err := stomp.Decode(r.buf)
		require.NoError(t, err)
		if f != nil {
			r.buf = r.buf[consumed:]
			if f.IsHeartbeat() {
				continue
			}
			return f
		}
		n, err := r.conn.Read(chunk)
		require.NoError(t, err)
		r.buf = append(r.buf, chunk[:n]...)
	}
}

func dialBrokerPipe(b *Broker) (client net.Conn, reader *frameReader) {
	clientConn, serverConn := net.Pipe()
	b.Accept(serverConn)
	return clientConn, &frameReader{conn: clientConn}
}

// TestBroker_ConnectSubscribeSendReceipt implements scenario 5 of §8:
// a client CONNECTs, SUBSCRIBEs with client-ack and gets ACK, SENDs a
// frame that is delivered back to itself as MESSAGE since it is the
// sole subscriber on that destination, then DISCONNECTs with a
// receipt and gets RECEIPT.
func TestBroker_ConnectSubscribeSendReceipt(t *testing.T) {
	b := New(stomp.HeartBeat{Send: 1000, Receive: 1000}, nil)
	client, reader := dialBrokerPipe(b)
	defer client.Close()

	_, err := client.Write(stomp.Encode(stomp.Frame{
		Command: stomp.CmdConnect,
		Headers: stomp.Headers{
			{Key: stomp.HdrAcceptVersion, Value: stomp.ProtocolVersion},
			{Key: stomp.HdrHeartBeat, Value: "500,500"},
		},
	}))
	require.NoError(t, err)
	connected := reader.next(t, time.Second)
	require.Equal(t, stomp.CmdConnected, connected.Command)
	hb, ok := connected.Headers.Get(stomp.HdrHeartBeat)
	require.True(t, ok)
	require.NotEmpty(t, hb)

	_, err = client.Write(stomp.Encode(stomp.Frame{
		Command: stomp.CmdSubscribe,
		Headers: stomp.Headers{
			{Key: stomp.HdrDestination, Value: "/queue/events"},
			{Key: stomp.HdrID, Value: "sub-0"},
			{Key: stomp.HdrAck, Value: "client"},
		},
	}))
	require.NoError(t, err)
	ack := reader.next(t, time.Second)
	require.Equal(t, stomp.CmdAck, ack.Command)
	subID, _ := ack.Headers.Get(stomp.HdrSubscription)
	require.Equal(t, "sub-0", subID)

	_, err = client.Write(stomp.Encode(stomp.Frame{
		Command: stomp.CmdSend,
		Headers: stomp.Headers{{Key: stomp.HdrDestination, Value: "/queue/events"}},
		Body:    []byte(`{"hello":"world"}`),
	}))
	require.NoError(t, err)
	msg := reader.next(t, time.Second)
	require.Equal(t, stomp.CmdMessage, msg.Command)
	dest, _ := msg.Headers.Get(stomp.HdrDestination)
	require.Equal(t, "/queue/events", dest)
	require.Equal(t, `{"hello":"world"}`, string(msg.Body))

	_, err = client.Write(stomp.Encode(stomp.Frame{
		Command: stomp.CmdDisconnect,
		Headers: stomp.Headers{{Key: stomp.HdrReceipt, Value: "bye-1"}},
	}))
	require.NoError(t, err)
	receipt := reader.next(t, time.Second)
	require.Equal(t, stomp.CmdReceipt, receipt.Command)
	receiptID, _ := receipt.Headers.Get(stomp.HdrReceiptID)
	require.Equal(t, "bye-1", receiptID)
}

// TestBroker_FansOutToAllSubscribersOfDestination checks that a SEND
// from one connection reaches every other connection subscribed to
// the same destination, not just the sender.
func TestBroker_FansOutToAllSubscribersOfDestination(t *testing.T) {
	b := New(stomp.HeartBeat{}, nil)

	sender, senderReader := dialBrokerPipe(b)
	defer sender.Close()
	listener, listenerReader := dialBrokerPipe(b)
	defer listener.Close()

	for _, conn := range []net.Conn{sender, listener} {
		_, err := conn.Write(stomp.Encode(stomp.Frame{
			Command: stomp.CmdConnect,
			Headers: stomp.Headers{{Key: stomp.HdrAcceptVersion, Value: stomp.ProtocolVersion}},
		}))
		require.NoError(t, err)
	}
	senderReader.next(t, time.Second)
	listenerReader.next(t, time.Second)

	_, err := listener.Write(stomp.Encode(stomp.Frame{
		Command: stomp.CmdSubscribe,
		Headers: stomp.Headers{
			{Key: stomp.HdrDestination, Value: "/topic/host"},
			{Key: stomp.HdrID, Value: "sub-listener"},
		},
	}))
	require.NoError(t, err)

	_, err = sender.Write(stomp.Encode(stomp.Frame{
		Command: stomp.CmdSend,
		Headers: stomp.Headers{{Key: stomp.HdrDestination, Value: "/topic/host"}},
		Body:    []byte("ping"),
	}))
	require.NoError(t, err)

	msg := listenerReader.next(t, time.Second)
	require.Equal(t, stomp.CmdMessage, msg.Command)
	require.Equal(t, "ping", string(msg.Body))
}

// TestBroker_UnsubscribesOnDisconnect verifies a closed connection's
// subscriptions no longer receive fan-out after it disconnects.
func TestBroker_UnsubscribesOnDisconnect(t *testing.T) {
	b := New(stomp.HeartBeat{}, nil)

	gone, goneReader := dialBrokerPipe(b)
	sender, senderReader := dialBrokerPipe(b)
	defer sender.Close()

	for _, conn := range []net.Conn{gone, sender} {
		_, err := conn.Write(stomp.Encode(stomp.Frame{
			Command: stomp.CmdConnect,
			Headers: stomp.Headers{{Key: stomp.HdrAcceptVersion, Value: stomp.ProtocolVersion}},
		}))
		require.NoError(t, err)
	}
	goneReader.next(t, time.Second)
	senderReader.next(t, time.Second)

	_, err := gone.Write(stomp.Encode(stomp.Frame{
		Command: stomp.CmdSubscribe,
		Headers: stomp.Headers{
			{Key: stomp.HdrDestination, Value: "/topic/host"},
			{Key: stomp.HdrID, Value: "sub-gone"},
		},
	}))
	require.NoError(t, err)
	gone.Close()
	time.Sleep(20 * time.Millisecond)

	require.Empty(t, b.subscribersOf("/topic/host"))
}
