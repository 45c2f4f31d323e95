package stream

import (
	"bytes"
	"fmt"
	"io"
	"net"
)

// DefaultCapability is the IPC capability level this client requests:
// kdb+'s "6" level, covering the full type set this module implements.
const DefaultCapability byte = 6

// clientHandshake writes "user:password" + capability + NUL and reads the
// server's single-byte negotiated capability response.
func clientHandshake(conn net.Conn, cred Credential, capability byte) (negotiated byte, err error) {
	msg := make([]byte, 0, len(cred.wireString())+2)
	msg = append(msg, []byte(cred.wireString())...)
	msg = append(msg, capability, 0)

	if _, err := conn.Write(msg); err != nil {
		return 0, fmt.Errorf("stream: writing handshake: %w", err)
	}

	var resp [1]byte
	if _, err := io.ReadFull(conn, resp[:]); err != nil {
		return 0, errAuthFailed(fmt.Sprintf("no response from server: %v", err))
	}

	return resp[0], nil
}

// serverHandshake reads a client's credential line up to the NUL
// terminator, validates it against accounts (nil accounts accepts any
// credential), and replies with the negotiated capability or closes the
// connection on failure.
func serverHandshake(conn net.Conn, accounts AccountFile, capability byte) (user string, err error) {
	line, err := readUntilNUL(conn)
	if err != nil {
		return "", errAuthFailed(fmt.Sprintf("reading handshake: %v", err))
	}
	if len(line) == 0 {
		return "", errAuthFailed("empty handshake")
	}

	// Last byte is the client's requested capability level; everything
	// before it is "user:password".
	credPart := line[:len(line)-1]

	idx := bytes.IndexByte(credPart, ':')
	if idx < 0 {
		return "", errAuthFailed("malformed credential, missing ':'")
	}
	user = string(credPart[:idx])
	password := string(credPart[idx+1:])

	if accounts != nil && !accounts.Verify(user, password) {
		conn.Close()
		return "", errAuthFailed(fmt.Sprintf("unknown user %q", user))
	}

	if _, err := conn.Write([]byte{capability}); err != nil {
		return "", fmt.Errorf("stream: writing handshake response: %w", err)
	}

	return user, nil
}

// readUntilNUL reads bytes from conn up to and excluding a NUL terminator.
func readUntilNUL(conn net.Conn) ([]byte, error) {
	var out []byte
	var b [1]byte

	for {
		if _, err := io.ReadFull(conn, b[:]); err != nil {
			return nil, err
		}
		if b[0] == 0 {
			return out, nil
		}
		out = append(out, b[0])
	}
}
