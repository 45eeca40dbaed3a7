package batcher

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeleteID_FormatsIndexAsStableString(t *testing.T) {
	assert.Equal(t, "del_0", deleteID(0))
	assert.Equal(t, "del_9", deleteID(9))
	assert.Equal(t, "del_42", deleteID(42))
}
