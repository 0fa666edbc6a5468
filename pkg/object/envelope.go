package object

import (
	"bytes"
	"strconv"
)

const (
	envelopeSeparator  = ' '
	envelopeTerminator = 0
)

func frameHeader(objType ObjectType, n int) []byte {
	hdr := make([]byte, 0, len(objType)+24)
	hdr = append(hdr, objType...)
	hdr = append(hdr, envelopeSeparator)
	hdr = strconv.AppendInt(hdr, int64(n), 10)
	return append(hdr, envelopeTerminator)
}

// Frame wraps payload in the universal envelope "type len\0payload".
func Frame(objType ObjectType, payload []byte) []byte {
	hdr := frameHeader(objType, len(payload))
	out := make([]byte, 0, len(hdr)+len(payload))
	out = append(out, hdr...)
	return append(out, payload...)
}

// Unframe splits an envelope into its type and payload. The returned
// payload aliases envelope.
func Unframe(envelope []byte) (ObjectType, []byte, error) {
	sp := bytes.IndexByte(envelope, envelopeSeparator)
	if sp < 0 {
		return "", nil, corrupt("missing type separator")
	}
	nul := bytes.IndexByte(envelope[sp+1:], envelopeTerminator)
	if nul < 0 {
		return "", nil, corrupt("missing length terminator")
	}
	nul += sp + 1

	objType, ok := ParseObjectType(string(envelope[:sp]))
	if !ok {
		return "", nil, corrupt("unknown object type " + strconv.Quote(string(envelope[:sp])))
	}
	lenField := envelope[sp+1 : nul]
	declared, err := parseLength(lenField)
	if err != nil {
		e := corrupt("invalid length " + strconv.Quote(string(lenField)))
		e.Err = err
		return "", nil, e
	}
	payload := envelope[nul+1:]
	if declared != len(payload) {
		e := corrupt("length mismatch")
		e.Declared, e.Actual = declared, len(payload)
		return "", nil, e
	}
	return objType, payload, nil
}

// parseLength accepts canonical decimal only: no sign, no leading zeros
// other than "0" itself.
func parseLength(b []byte) (int, error) {
	if len(b) == 0 {
		return 0, strconv.ErrSyntax
	}
	if len(b) > 1 && b[0] == '0' {
		return 0, strconv.ErrSyntax
	}
	for _, c := range b {
		if c < '0' || c > '9' {
			return 0, strconv.ErrSyntax
		}
	}
	return strconv.Atoi(string(b))
}
