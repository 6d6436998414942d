package model

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalizePair_OrderIndependent(t *testing.T) {
	req := require.New(t)

	lo, hi := NormalizePair(7, 3)
	req.Equal(uint64(3), lo)
	req.Equal(uint64(7), hi)

	lo2, hi2 := NormalizePair(3, 7)
	req.Equal(lo, lo2)
	req.Equal(hi, hi2)
}

func TestDirectConversation_PeerOf(t *testing.T) {
	req := require.New(t)
	conv := &DirectConversation{UserLo: 3, UserHi: 7}

	req.Equal(uint64(7), conv.PeerOf(3))
	req.Equal(uint64(3), conv.PeerOf(7))
	req.True(conv.Has(3))
	req.True(conv.Has(7))
	req.False(conv.Has(5))
}
