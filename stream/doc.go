// Package stream implements the kdb+ IPC stream client: transport
// selection (TCP, TLS, Unix domain socket), the connect-time credential
// handshake, and the request/response API applications use on top of the
// frame codec.
//
// A Stream owns one transport connection and one frame.Encoder/
// frame.Decoder pair. Reads happen on a dedicated background goroutine
// that feeds bytes into the decoder and publishes completed frames on a
// channel; SendSync and ReceiveAsync select against that channel (and the
// caller's context) rather than reading the connection directly, so
// cancelling a call never stops the background reader — bytes already in
// flight still land in the decoder's buffer for the next call, matching
// the cancellation-safety contract of the frame layer.
package stream
