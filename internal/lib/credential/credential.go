package credential

import (
	"crypto/ed25519"
	"encoding/base64"
	"errors"
	"eventPass/internal/lib/clock"
	"fmt"
	"github.com/fxamacker/cbor/v2"
	"time"
)

const signatureSize = ed25519.SignatureSize

var (
	ErrMalformed        = errors.New("credential: malformed")
	ErrInvalidSignature = errors.New("credential: invalid signature")
	ErrExpired          = errors.New("credential: expired")
)

// encoding rejects non-zero trailing bits, so every character of a
// credential is significant.
var encoding = base64.RawURLEncoding.Strict()

var (
	encMode cbor.EncMode
	decMode cbor.DecMode
)

func init() {
	var err error

	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("credential: CBOR encoder initialization failed: " + err.Error())
	}

	decMode, err = cbor.DecOptions{
		DupMapKey: cbor.DupMapKeyEnforcedAPF,
	}.DecMode()
	if err != nil {
		panic("credential: CBOR decoder initialization failed: " + err.Error())
	}
}

// Claims is the signed payload of a ticket credential.
type Claims struct {
	TicketID string `cbor:"1,keyasint"`
	UserID   string `cbor:"2,keyasint"`
	EventID  string `cbor:"3,keyasint"`

	// EventTitle is carried for previews only.
	EventTitle string `cbor:"4,keyasint"`

	// IssuedAt and ExpiresAt are Unix seconds. ExpiresAt is zero when the
	// credential never expires.
	IssuedAt  int64 `cbor:"5,keyasint"`
	ExpiresAt int64 `cbor:"6,keyasint,omitempty"`
}

func (c Claims) complete() bool {
	return c.TicketID != "" && c.UserID != "" && c.EventID != ""
}

type Codec struct {
	private ed25519.PrivateKey
	public  ed25519.PublicKey
	clock   clock.Clock
	ttl     time.Duration
}

type Option func(*Codec)

// WithTTL makes credentials expire d after issuance. Zero disables expiry.
func WithTTL(d time.Duration) Option {
	return func(c *Codec) {
		if d >= 0 {
			c.ttl = d
		}
	}
}

func WithClock(clk clock.Clock) Option {
	return func(c *Codec) {
		c.clock = clk
	}
}

func NewCodec(private ed25519.PrivateKey, opts ...Option) *Codec {
	c := &Codec{
		private: private,
		public:  private.Public().(ed25519.PublicKey),
		clock:   clock.NewSystem(),
	}
	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Encode stamps IssuedAt (and ExpiresAt when a TTL is set), signs the
// claims and returns the credential string.
func (c *Codec) Encode(claims Claims) (string, error) {
	if !claims.complete() {
		return "", fmt.Errorf("credential: ticket, user and event ids are required")
	}

	now := c.clock.Now()
	claims.IssuedAt = now.Unix()
	claims.ExpiresAt = 0
	if c.ttl > 0 {
		claims.ExpiresAt = now.Add(c.ttl).Unix()
	}

	payload, err := encMode.Marshal(claims)
	if err != nil {
		return "", fmt.Errorf("credential: encoding claims: %w", err)
	}

	signature := ed25519.Sign(c.private, payload)

	raw := make([]byte, len(payload)+signatureSize)
	copy(raw, payload)
	copy(raw[len(payload):], signature)

	return encoding.EncodeToString(raw), nil
}

// Decode verifies the signature and expiry of a credential and returns its
// claims.
func (c *Codec) Decode(credential string) (Claims, error) {
	payload, signature, err := split(credential)
	if err != nil {
		return Claims{}, err
	}

	if !ed25519.Verify(c.public, payload, signature) {
		return Claims{}, ErrInvalidSignature
	}

	claims, err := unmarshal(payload)
	if err != nil {
		return Claims{}, err
	}

	if claims.ExpiresAt != 0 && c.clock.Now().Unix() >= claims.ExpiresAt {
		return Claims{}, ErrExpired
	}

	return claims, nil
}

// Peek returns the claims of a credential without verifying its signature
// or expiry. The result is only fit for display.
func Peek(credential string) (Claims, error) {
	payload, _, err := split(credential)
	if err != nil {
		return Claims{}, err
	}

	return unmarshal(payload)
}

func split(credential string) (payload, signature []byte, err error) {
	raw, err := encoding.DecodeString(credential)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	if len(raw) <= signatureSize {
		return nil, nil, fmt.Errorf("%w: too short for signature", ErrMalformed)
	}

	splitPoint := len(raw) - signatureSize

	return raw[:splitPoint], raw[splitPoint:], nil
}

func unmarshal(payload []byte) (Claims, error) {
	var claims Claims
	if err := decMode.Unmarshal(payload, &claims); err != nil {
		return Claims{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	if !claims.complete() {
		return Claims{}, fmt.Errorf("%w: missing ids", ErrMalformed)
	}

	return claims, nil
}
