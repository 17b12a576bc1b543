package voice

import (
	"bytes"
	"encoding/binary"
	"strconv"
	"strings"
)

// PCM format produced by the speech model unless its MIME type says otherwise.
const (
	defaultSampleRate    = 24000
	defaultChannels      = 1
	defaultBitsPerSample = 16
)

// wrapPCM wraps little-endian PCM samples in a canonical 44-byte RIFF/WAVE
// header.
func wrapPCM(pcm []byte, sampleRate, channels, bitsPerSample int) []byte {
	blockAlign := channels * bitsPerSample / 8
	byteRate := sampleRate * blockAlign

	buf := bytes.NewBuffer(make([]byte, 0, 44+len(pcm)))
	buf.WriteString("RIFF")
	_ = binary.Write(buf, binary.LittleEndian, uint32(36+len(pcm)))
	buf.WriteString("WAVE")

	buf.WriteString("fmt ")
	_ = binary.Write(buf, binary.LittleEndian, uint32(16))
	_ = binary.Write(buf, binary.LittleEndian, uint16(1)) // PCM
	_ = binary.Write(buf, binary.LittleEndian, uint16(channels))
	_ = binary.Write(buf, binary.LittleEndian, uint32(sampleRate))
	_ = binary.Write(buf, binary.LittleEndian, uint32(byteRate))
	_ = binary.Write(buf, binary.LittleEndian, uint16(blockAlign))
	_ = binary.Write(buf, binary.LittleEndian, uint16(bitsPerSample))

	buf.WriteString("data")
	_ = binary.Write(buf, binary.LittleEndian, uint32(len(pcm)))
	buf.Write(pcm)
	return buf.Bytes()
}

// toWAV returns audio as WAV bytes. Data that already carries a WAV MIME
// type is returned unchanged; raw PCM is wrapped using the rate from a MIME
// type such as "audio/L16;codec=pcm;rate=24000".
func toWAV(data []byte, mimeType string) []byte {
	mt := strings.ToLower(strings.TrimSpace(mimeType))
	if strings.HasPrefix(mt, "audio/wav") || strings.HasPrefix(mt, "audio/x-wav") || strings.HasPrefix(mt, "audio/wave") {
		return data
	}
	return wrapPCM(data, sampleRateFromMIME(mt), defaultChannels, defaultBitsPerSample)
}

func sampleRateFromMIME(mimeType string) int {
	for _, param := range strings.Split(mimeType, ";") {
		key, value, ok := strings.Cut(strings.TrimSpace(param), "=")
		if !ok || key != "rate" {
			continue
		}
		if rate, err := strconv.Atoi(value); err == nil && rate > 0 {
			return rate
		}
	}
	return defaultSampleRate
}
