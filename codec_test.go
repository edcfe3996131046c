package announce_test

import (
	"testing"

	"github.com/ProtonMail/announce"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/encoding/protowire"
)

func TestCodecsPreserveOrder(t *testing.T) {
	for name, codec := range map[string]announce.Codec{
		"proto": announce.ProtoCodec{},
		"json":  announce.JSONCodec{},
	} {
		t.Run(name, func(t *testing.T) {
			coll := announce.NewCollection()
			coll.Ensure("message")
			coll.Insert("error", "zeta")
			coll.Insert("error", "alpha")
			coll.Insert("success", "Saved 3 items")
			coll.Insert("success", `quoted "text" and 100%`)

			b, err := codec.Marshal(coll)
			require.NoError(t, err)

			res, err := codec.Unmarshal(b)
			require.NoError(t, err)
			require.Equal(t, []string{"message", "error", "success"}, res.Categories())
			require.Equal(t, []string{}, res.Messages("message"))
			require.Equal(t, []string{"zeta", "alpha"}, res.Messages("error"))
			require.Equal(t, []string{"Saved 3 items", `quoted "text" and 100%`}, res.Messages("success"))
		})
	}
}

func TestCodecsRejectGarbage(t *testing.T) {
	_, err := announce.ProtoCodec{}.Unmarshal([]byte{0x0a, 0xff})
	require.Error(t, err)

	_, err = announce.JSONCodec{}.Unmarshal([]byte("not json"))
	require.Error(t, err)

	_, err = announce.JSONCodec{}.Unmarshal([]byte(`{"error": ["not", "a", "set"]}`))
	require.Error(t, err)
}

func TestProtoCodecSkipsUnknownFields(t *testing.T) {
	var category []byte

	category = protowire.AppendTag(category, 1, protowire.BytesType)
	category = protowire.AppendString(category, "error")
	category = protowire.AppendTag(category, 7, protowire.VarintType)
	category = protowire.AppendVarint(category, 42)
	category = protowire.AppendTag(category, 2, protowire.BytesType)
	category = protowire.AppendString(category, "e1")

	var b []byte

	b = protowire.AppendTag(b, 9, protowire.Fixed32Type)
	b = protowire.AppendFixed32(b, 1)
	b = protowire.AppendTag(b, 1, protowire.BytesType)
	b = protowire.AppendBytes(b, category)

	coll, err := announce.ProtoCodec{}.Unmarshal(b)
	require.NoError(t, err)
	require.Equal(t, []string{"error"}, coll.Categories())
	require.Equal(t, []string{"e1"}, coll.Messages("error"))
}
