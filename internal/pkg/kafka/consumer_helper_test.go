package kafka

import (
	"testing"

	"github.com/IBM/sarama"
	"github.com/stretchr/testify/require"
)

func TestToCanalMessage(t *testing.T) {
	req := require.New(t)

	payload := []byte(`{
		"data": [{"id": "7", "username": "alice", "is_delete": "0"}],
		"database": "upstream",
		"table": "users",
		"type": "INSERT"
	}`)

	msg, err := ToCanalMessage(&sarama.ConsumerMessage{Value: payload}, "users")
	req.NoError(err)
	req.Equal("INSERT", msg.Type)
	req.Len(msg.Data, 1)

	// 表名不匹配
	_, err = ToCanalMessage(&sarama.ConsumerMessage{Value: payload}, "orders")
	req.Error(err)

	// 空数据
	_, err = ToCanalMessage(&sarama.ConsumerMessage{Value: []byte(`{"table":"users","data":[]}`)}, "users")
	req.Error(err)

	// 非法 JSON
	_, err = ToCanalMessage(&sarama.ConsumerMessage{Value: []byte(`{`)}, "users")
	req.Error(err)
}

func TestRowHelpers(t *testing.T) {
	req := require.New(t)

	row := map[string]interface{}{
		"id":        "42",
		"username":  "alice",
		"is_delete": "1",
		"nullable":  nil,
	}

	req.Equal(uint64(42), rowUint64(row, "id"))
	req.Equal("alice", rowString(row, "username"))
	req.True(rowBool(row, "is_delete"))
	req.False(rowBool(row, "missing"))
	req.Empty(rowString(row, "nullable"))
	req.Zero(rowUint64(row, "username"))
}
