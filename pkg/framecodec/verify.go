package framecodec

// Verify decodes frames and checks that the result equals payload. It is
// the self-check run after a transport round trip.
func Verify(dec *Decoder, payload []byte, frames []Frame) error {
	got, h, err := dec.DecodeWithHeader(frames)
	if err != nil {
		return err
	}

	if len(got) != len(payload) {
		return decodeErr(ErrVerificationFailed, -1,
			"decoded %d bytes, expected %d", len(got), len(payload))
	}

	c := dec.Geometry().Capacity()
	for i := range payload {
		if got[i] != payload[i] {
			off := h.Size() + i
			return decodeErr(ErrVerificationFailed, off/c,
				"first difference at payload offset %d", i)
		}
	}
	return nil
}
