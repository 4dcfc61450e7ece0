// Copyright (c) 2026 Vidora. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/vidora/internal/platform/sec"
)

/*
TestPasswordHash verifies the one-way comparison contract.
*/
func TestPasswordHash(t *testing.T) {
	hash, err := sec.HashPassword("correct-pw")
	require.NoError(t, err)
	assert.NotEqual(t, "correct-pw", hash)

	assert.True(t, sec.CheckPasswordHash("correct-pw", hash))
	assert.False(t, sec.CheckPasswordHash("wrong-pw", hash))
	assert.False(t, sec.CheckPasswordHash("correct-pw", ""))
	assert.False(t, sec.CheckPasswordHash("correct-pw", "not-a-bcrypt-hash"))
}

/*
TestPasswordHash_Salted checks that equal passwords produce different hashes.
*/
func TestPasswordHash_Salted(t *testing.T) {
	first, err := sec.HashPassword("same")
	require.NoError(t, err)
	second, err := sec.HashPassword("same")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}
