// Package wire implementa o formato binário (protobuf wire format) trocado
// entre o servidor de geração e os visualizadores via WebSocket.
package wire

import (
	"errors"
	"fmt"
	"math"

	"google.golang.org/protobuf/encoding/protowire"
)

// ---------- ENCODER ----------

// Encoder acumula bytes no formato protobuf.
type Encoder struct {
	buf []byte
}

// NewEncoder cria um encoder vazio.
func NewEncoder() *Encoder {
	return &Encoder{buf: make([]byte, 0, 256)}
}

// Bytes retorna o buffer serializado.
func (e *Encoder) Bytes() []byte {
	return e.buf
}

// Reset limpa o buffer.
func (e *Encoder) Reset() {
	e.buf = e.buf[:0]
}

// EncodeVarint codifica um campo varint com sinal (zigzag). Zero não é serializado.
func (e *Encoder) EncodeVarint(field protowire.Number, v int64) {
	if v == 0 {
		return
	}
	e.buf = protowire.AppendTag(e.buf, field, protowire.VarintType)
	e.buf = protowire.AppendVarint(e.buf, protowire.EncodeZigZag(v))
}

// EncodeUvarint codifica um uint64. Zero não é serializado.
func (e *Encoder) EncodeUvarint(field protowire.Number, v uint64) {
	if v == 0 {
		return
	}
	e.buf = protowire.AppendTag(e.buf, field, protowire.VarintType)
	e.buf = protowire.AppendVarint(e.buf, v)
}

// EncodeBool codifica um booleano verdadeiro (falso é o default).
func (e *Encoder) EncodeBool(field protowire.Number, v bool) {
	if !v {
		return
	}
	e.buf = protowire.AppendTag(e.buf, field, protowire.VarintType)
	e.buf = protowire.AppendVarint(e.buf, 1)
}

// EncodeBytes codifica um campo length-delimited.
func (e *Encoder) EncodeBytes(field protowire.Number, v []byte) {
	if len(v) == 0 {
		return
	}
	e.buf = protowire.AppendTag(e.buf, field, protowire.BytesType)
	e.buf = protowire.AppendBytes(e.buf, v)
}

// EncodePackedFloat codifica um repeated float empacotado.
func (e *Encoder) EncodePackedFloat(field protowire.Number, values []float32) {
	if len(values) == 0 {
		return
	}
	e.buf = protowire.AppendTag(e.buf, field, protowire.BytesType)
	e.buf = protowire.AppendVarint(e.buf, uint64(len(values)*4))
	for _, v := range values {
		e.buf = protowire.AppendFixed32(e.buf, math.Float32bits(v))
	}
}

// ---------- DECODER ----------

// ErrTruncated indica uma mensagem cortada ou malformada.
var ErrTruncated = errors.New("mensagem protobuf truncada")

// Decoder lê campos do formato protobuf.
type Decoder struct {
	buf []byte
}

// NewDecoder cria um decoder sobre buf.
func NewDecoder(buf []byte) *Decoder {
	return &Decoder{buf: buf}
}

// Done indica se todos os bytes foram consumidos.
func (d *Decoder) Done() bool {
	return len(d.buf) == 0
}

// ReadTag lê o próximo field tag.
func (d *Decoder) ReadTag() (protowire.Number, protowire.Type, error) {
	num, typ, n := protowire.ConsumeTag(d.buf)
	if n < 0 {
		return 0, 0, fmt.Errorf("%w: %v", ErrTruncated, protowire.ParseError(n))
	}
	d.buf = d.buf[n:]
	return num, typ, nil
}

// ReadUvarint lê um varint sem sinal.
func (d *Decoder) ReadUvarint() (uint64, error) {
	v, n := protowire.ConsumeVarint(d.buf)
	if n < 0 {
		return 0, fmt.Errorf("%w: %v", ErrTruncated, protowire.ParseError(n))
	}
	d.buf = d.buf[n:]
	return v, nil
}

// ReadVarint lê um varint com sinal (zigzag).
func (d *Decoder) ReadVarint() (int64, error) {
	v, err := d.ReadUvarint()
	if err != nil {
		return 0, err
	}
	return protowire.DecodeZigZag(v), nil
}

// ReadBool lê um booleano.
func (d *Decoder) ReadBool() (bool, error) {
	v, err := d.ReadUvarint()
	return v != 0, err
}

// ReadBytes lê um campo length-delimited. O slice aponta para o buffer original.
func (d *Decoder) ReadBytes() ([]byte, error) {
	v, n := protowire.ConsumeBytes(d.buf)
	if n < 0 {
		return nil, fmt.Errorf("%w: %v", ErrTruncated, protowire.ParseError(n))
	}
	d.buf = d.buf[n:]
	return v, nil
}

// ReadPackedFloat lê um repeated float empacotado.
func (d *Decoder) ReadPackedFloat() ([]float32, error) {
	raw, err := d.ReadBytes()
	if err != nil {
		return nil, err
	}
	if len(raw)%4 != 0 {
		return nil, fmt.Errorf("%w: floats empacotados com %d bytes", ErrTruncated, len(raw))
	}
	out := make([]float32, 0, len(raw)/4)
	for len(raw) > 0 {
		bits, n := protowire.ConsumeFixed32(raw)
		if n < 0 {
			return nil, fmt.Errorf("%w: %v", ErrTruncated, protowire.ParseError(n))
		}
		out = append(out, math.Float32frombits(bits))
		raw = raw[n:]
	}
	return out, nil
}

// SkipField descarta o valor de um campo desconhecido.
func (d *Decoder) SkipField(num protowire.Number, typ protowire.Type) error {
	n := protowire.ConsumeFieldValue(num, typ, d.buf)
	if n < 0 {
		return fmt.Errorf("%w: %v", ErrTruncated, protowire.ParseError(n))
	}
	d.buf = d.buf[n:]
	return nil
}
