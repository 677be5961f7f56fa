package wire

import (
	"fmt"

	"IceVision/shared/mesh"

	"google.golang.org/protobuf/encoding/protowire"
)

// MessageType identifica o conteúdo de um Envelope.
type MessageType int32

const (
	MsgUnknown     MessageType = iota
	MsgMeshFrame               // servidor → cliente: malha publicada
	MsgRegenerate              // cliente → servidor: clique/toque
	MsgPointerMove             // cliente → servidor: movimento (adia o timer)
)

func (t MessageType) String() string {
	switch t {
	case MsgMeshFrame:
		return "MESH_FRAME"
	case MsgRegenerate:
		return "REGENERATE"
	case MsgPointerMove:
		return "POINTER_MOVE"
	default:
		return fmt.Sprintf("UNKNOWN(%d)", int32(t))
	}
}

// Envelope embrulha todas as mensagens trocadas pelo WebSocket.
type Envelope struct {
	Type    MessageType
	Payload []byte
}

func (m *Envelope) Marshal() []byte {
	e := NewEncoder()
	e.EncodeVarint(1, int64(m.Type))
	e.EncodeBytes(2, m.Payload)
	return e.Bytes()
}

func (m *Envelope) Unmarshal(data []byte) error {
	d := NewDecoder(data)
	for !d.Done() {
		num, typ, err := d.ReadTag()
		if err != nil {
			return err
		}
		switch {
		case num == 1 && typ == protowire.VarintType:
			v, err := d.ReadVarint()
			if err != nil {
				return err
			}
			m.Type = MessageType(v)
		case num == 2 && typ == protowire.BytesType:
			v, err := d.ReadBytes()
			if err != nil {
				return err
			}
			m.Payload = v
		default:
			if err := d.SkipField(num, typ); err != nil {
				return err
			}
		}
	}
	return nil
}

// MeshFrame é a malha publicada em formato de buffers planos.
type MeshFrame struct {
	Version    uint64
	Level      int32
	Depth      int32
	Degenerate int32
	Positions  []float32 // x,y,z por vértice (3 vértices por face)
	Normals    []float32
}

// FrameFromMesh converte uma malha publicada em frame. Só posições e normais
// vão para o fio; a cor é escolhida por quem desenha.
func FrameFromMesh(m *mesh.NormalizedMesh) *MeshFrame {
	positions := make([]float32, 0, 3*len(m.Vertices))
	normals := make([]float32, 0, 3*len(m.Normals))
	for i, v := range m.Vertices {
		n := m.Normals[i]
		positions = append(positions, float32(v[0]), float32(v[1]), float32(v[2]))
		normals = append(normals, float32(n[0]), float32(n[1]), float32(n[2]))
	}
	return &MeshFrame{
		Version:    m.Version,
		Level:      int32(m.Level),
		Depth:      int32(m.Level.Depth()),
		Degenerate: int32(m.Degenerate),
		Positions:  positions,
		Normals:    normals,
	}
}

// Geometry devolve os buffers prontos para upload, com a cor dada.
func (m *MeshFrame) Geometry(tint [4]uint8) mesh.GeometryData {
	n := len(m.Positions) / 3
	colors := make([]uint8, 0, 4*n)
	for i := 0; i < n; i++ {
		colors = append(colors, tint[0], tint[1], tint[2], tint[3])
	}
	return mesh.GeometryData{Vertices: m.Positions, Normals: m.Normals, Colors: colors}
}

func (m *MeshFrame) Marshal() []byte {
	e := NewEncoder()
	e.EncodeUvarint(1, m.Version)
	e.EncodeVarint(2, int64(m.Level))
	e.EncodeVarint(3, int64(m.Depth))
	e.EncodeVarint(4, int64(m.Degenerate))
	e.EncodePackedFloat(5, m.Positions)
	e.EncodePackedFloat(6, m.Normals)
	return e.Bytes()
}

func (m *MeshFrame) Unmarshal(data []byte) error {
	d := NewDecoder(data)
	for !d.Done() {
		num, typ, err := d.ReadTag()
		if err != nil {
			return err
		}
		if typ == protowire.VarintType && num >= 1 && num <= 4 {
			if num == 1 {
				if m.Version, err = d.ReadUvarint(); err != nil {
					return err
				}
				continue
			}
			v, err := d.ReadVarint()
			if err != nil {
				return err
			}
			switch num {
			case 2:
				m.Level = int32(v)
			case 3:
				m.Depth = int32(v)
			case 4:
				m.Degenerate = int32(v)
			}
			continue
		}
		switch {
		case num == 5 && typ == protowire.BytesType:
			if m.Positions, err = d.ReadPackedFloat(); err != nil {
				return err
			}
		case num == 6 && typ == protowire.BytesType:
			if m.Normals, err = d.ReadPackedFloat(); err != nil {
				return err
			}
		default:
			if err := d.SkipField(num, typ); err != nil {
				return err
			}
		}
	}
	if len(m.Positions)%9 != 0 || len(m.Normals) != len(m.Positions) {
		return fmt.Errorf("%w: %d posições e %d normais", ErrTruncated, len(m.Positions), len(m.Normals))
	}
	return nil
}

// RegenerateRequest pede uma regeneração; sem HasLevel o servidor avança o ciclo.
type RegenerateRequest struct {
	HasLevel bool
	Level    int32
}

func (m *RegenerateRequest) Marshal() []byte {
	e := NewEncoder()
	e.EncodeBool(1, m.HasLevel)
	e.EncodeVarint(2, int64(m.Level))
	return e.Bytes()
}

func (m *RegenerateRequest) Unmarshal(data []byte) error {
	d := NewDecoder(data)
	for !d.Done() {
		num, typ, err := d.ReadTag()
		if err != nil {
			return err
		}
		switch {
		case num == 1 && typ == protowire.VarintType:
			if m.HasLevel, err = d.ReadBool(); err != nil {
				return err
			}
		case num == 2 && typ == protowire.VarintType:
			v, err := d.ReadVarint()
			if err != nil {
				return err
			}
			m.Level = int32(v)
		default:
			if err := d.SkipField(num, typ); err != nil {
				return err
			}
		}
	}
	return nil
}

// Pack embrulha uma mensagem em um Envelope já serializado.
func Pack(t MessageType, payload []byte) []byte {
	env := Envelope{Type: t, Payload: payload}
	return env.Marshal()
}
