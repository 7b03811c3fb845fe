package expr

import (
	"encoding/binary"
	"testing"

	reflectcat "github.com/atfkit/atf/pkg/reflect"
)

// scenarioRecSize mirrors pkg/reflect's unexported packed node-record width;
// duplicated here because tests build their own catalogue fixtures rather
// than reaching into pkg/reflect's internals.
const scenarioRecSize = 29

func packRecord(kind reflectcat.NodeKind, nameID uint32, size, a, b uint64) []byte {
	rec := make([]byte, scenarioRecSize)
	rec[0] = byte(kind)
	binary.LittleEndian.PutUint32(rec[1:5], nameID)
	binary.LittleEndian.PutUint64(rec[5:13], size)
	binary.LittleEndian.PutUint64(rec[13:21], a)
	binary.LittleEndian.PutUint64(rec[21:29], b)
	return rec
}

const scenarioBaseAddressExpected = 0x140000000

// buildScenarioCatalogue builds a small fixture matching spec.md's S1-S6
// expression scenarios:
//
//	gConfig: struct Config { int32_t count; char name[16]; } @ 0x140001000
//	gList:   Item[4] where Item { int32_t id; }             @ 0x140002000
func buildScenarioCatalogue(t *testing.T) *reflectcat.ExtendedCatalogue {
	t.Helper()

	names := []string{
		"", "int32_t", "char", "gConfig", "count", "name",
		"Config", "gList", "Item", "id",
	}

	records := [][]byte{
		nil,                                                     // 0 reserved
		packRecord(reflectcat.KindScalar, 1, 4, 0, 0),           // 1 int32_t
		packRecord(reflectcat.KindScalar, 2, 1, 0, 0),           // 2 char
		packRecord(reflectcat.KindArray, 0, 16, 2, 0),           // 3 char[16]
		packRecord(reflectcat.KindDataMemberField, 4, 4, 1, 0),  // 4 count @0
		packRecord(reflectcat.KindDataMemberField, 5, 16, 3, 4), // 5 name @4
		packRecord(reflectcat.KindStruct, 6, 20, 4, 2),          // 6 Config{count,name}
		packRecord(reflectcat.KindVar, 3, 20, 6, 0x140001000),   // 7 gConfig
		packRecord(reflectcat.KindDataMemberField, 9, 4, 1, 0),  // 8 id @0
		packRecord(reflectcat.KindStruct, 8, 4, 8, 1),           // 9 Item{id}
		packRecord(reflectcat.KindArray, 0, 16, 9, 0),           // 10 Item[4]
		packRecord(reflectcat.KindVar, 7, 16, 10, 0x140002000),  // 11 gList
	}

	var blob []byte
	offsets := make([]uint32, len(records))
	for i, rec := range records {
		offsets[i] = uint32(len(blob))
		if rec == nil {
			blob = append(blob, make([]byte, scenarioRecSize)...)
			continue
		}
		blob = append(blob, rec...)
	}

	cat := reflectcat.NewCatalogue(nil, nil, nil, nil, blob, offsets, names)
	return reflectcat.NewExtendedCatalogue(cat)
}
