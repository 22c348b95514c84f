package utils

import (
	"errors"
	"math"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPartitionMap(t *testing.T) {
	{ // Test PartitionMap
		getHisto := func(K, Np int) (histo map[int]int) {
			pm := NewPartitionMap(Np, K)
			histo = make(map[int]int)
			for np := 0; np < pm.ParallelDegree; np++ {
				maxK := pm.GetBucketDimension(np)
				histo[maxK]++
			}
			return
		}
		getTotal := func(histo map[int]int) (total int) {
			for key, count := range histo {
				total += key * count
			}
			return
		}
		assert.Equal(t, map[int]int{0: 30, 1: 2}, getHisto(2, 32))
		assert.Equal(t, map[int]int{1: 32}, getHisto(32, 32))
		assert.Equal(t, map[int]int{8: 32}, getHisto(256, 32))
		assert.Equal(t, map[int]int{8: 1, 9: 31}, getHisto(287, 32))
		assert.Equal(t, 287, getTotal(getHisto(287, 32)))
		for n := 64; n < 2000; n++ {
			var (
				keys   [2]float64
				keyNum int
			)
			histo := getHisto(n, 32)
			for key := range histo {
				keys[keyNum] = float64(key)
				keyNum++
			}
			if keyNum == 2 {
				assert.Equal(t, 1., math.Abs(keys[0]-keys[1])) // Maximum imbalance of 1
			}
			assert.Equal(t, n, getTotal(histo))
		}
	}
	{ // Test inverted bucket probe - find bucket that contains index (efficiently)
		for maxIndex := 10; maxIndex < 500; maxIndex++ {
			pm := NewPartitionMap(5, maxIndex)
			owners := pm.Owners()
			for k := 0; k < maxIndex; k++ {
				tryCount, bn, min, max := pm.getBucketWithTryCount(k)
				mmin, mmax := pm.GetBucketRange(bn)
				assert.True(t, k >= min && k < max && min == mmin && max == mmax && tryCount <= 1)
				assert.Equal(t, bn, owners[k])
			}
		}
	}
}

func TestSerialComm(t *testing.T) {
	c := Serial()
	assert.Equal(t, 0, c.Rank())
	assert.Equal(t, 1, c.Size())
	assert.Equal(t, 7, ReduceSum(c, 7))
	assert.True(t, ReduceOr(c, true))
	in := c.Exchange(map[int]any{0: "self"})
	assert.Equal(t, "self", in[0])
}

func TestWorldCollectives(t *testing.T) {
	const NP = 4
	var calls atomic.Int32
	err := Run(NP, func(c Comm) error {
		calls.Add(1)
		// Repeated rounds exercise outbox reuse between exchanges
		for round := 0; round < 3; round++ {
			assert.Equal(t, 0+1+2+3+NP*round, ReduceSum(c, c.Rank()+round))
			assert.Equal(t, 0, ReduceMin(c, c.Rank()))
			assert.Equal(t, NP-1, ReduceMax(c, c.Rank()))
			assert.True(t, ReduceOr(c, c.Rank() == 2))
			assert.False(t, ReduceAnd(c, c.Rank() == 2))
		}
		// Ring exchange, each rank talks to its right neighbour only
		right := (c.Rank() + 1) % NP
		left := (c.Rank() + NP - 1) % NP
		in := c.Exchange(map[int]any{right: []int{c.Rank(), c.Rank()}})
		require.Len(t, in, 1)
		assert.Equal(t, []int{left, left}, in[left])
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, int32(NP), calls.Load())
}

func TestWorldFailingRank(t *testing.T) {
	boom := errors.New("boom")
	err := Run(3, func(c Comm) error {
		if c.Rank() == 1 {
			return boom
		}
		ReduceSum(c, 1)
		return nil
	})
	require.Error(t, err)
}
