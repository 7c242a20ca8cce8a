package scval

import (
	"encoding/base32"
	"encoding/binary"
	"fmt"
)

// Strkey version bytes. The high five bits select the leading character of
// the encoded form: accounts start with G, contracts with C.
const (
	versionAccount  byte = 6 << 3
	versionContract byte = 2 << 3
)

var strkeyEncoding = base32.StdEncoding.WithPadding(base32.NoPadding)

// ContractAddress encodes a raw 32-byte contract hash as a C... strkey.
func ContractAddress(raw []byte) (string, error) {
	if len(raw) != 32 {
		return "", fmt.Errorf("scval: contract hash must be 32 bytes, got %d", len(raw))
	}
	return encodeStrkey(versionContract, raw), nil
}

// ContractHash decodes a C... strkey back to its raw 32-byte hash.
func ContractHash(address string) ([]byte, error) {
	version, raw, err := decodeStrkey(address)
	if err != nil {
		return nil, err
	}
	if version != versionContract {
		return nil, fmt.Errorf("scval: %q is not a contract address", address)
	}
	return raw, nil
}

func encodeStrkey(version byte, raw []byte) string {
	payload := make([]byte, 0, len(raw)+3)
	payload = append(payload, version)
	payload = append(payload, raw...)
	payload = binary.LittleEndian.AppendUint16(payload, crc16(payload))
	return strkeyEncoding.EncodeToString(payload)
}

func decodeStrkey(s string) (byte, []byte, error) {
	payload, err := strkeyEncoding.DecodeString(s)
	if err != nil {
		return 0, nil, fmt.Errorf("scval: invalid strkey %q: %w", s, err)
	}
	if len(payload) < 3 {
		return 0, nil, fmt.Errorf("scval: strkey %q too short", s)
	}
	body, sum := payload[:len(payload)-2], payload[len(payload)-2:]
	if crc16(body) != binary.LittleEndian.Uint16(sum) {
		return 0, nil, fmt.Errorf("scval: strkey %q checksum mismatch", s)
	}
	return body[0], body[1:], nil
}

// crc16 is the CRC16-XModem checksum strkeys are guarded with.
func crc16(data []byte) uint16 {
	var crc uint16
	for _, b := range data {
		crc ^= uint16(b) << 8
		for i := 0; i < 8; i++ {
			if crc&0x8000 != 0 {
				crc = crc<<1 ^ 0x1021
			} else {
				crc <<= 1
			}
		}
	}
	return crc
}
