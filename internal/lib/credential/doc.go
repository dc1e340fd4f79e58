// Package credential encodes and verifies the signed credential embedded in
// every issued ticket and rendered as the QR code scanned at the door.
//
// # Wire format
//
// The raw credential is a CBOR-encoded Claims payload followed by a 64-byte
// Ed25519 signature over the payload bytes:
//
//	[CBOR payload bytes] [64-byte Ed25519 signature]
//
// The split point is always len(raw) - 64. The raw bytes are encoded with
// unpadded base64url so the credential is safe in URLs and QR codes.
//
// The claims only identify which ticket row to load and prove the row was
// issued by this service. Ticket state always comes from the ledger.
package credential
