package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAdID(t *testing.T) {
	id := AdID("https://www.facebook.com/marketplace/item/12345")
	assert.Len(t, id, 32, "md5 hex digest")

	// stable for the same URL, different for a different one
	assert.Equal(t, id, AdID("https://www.facebook.com/marketplace/item/12345"))
	assert.NotEqual(t, id, AdID("https://www.facebook.com/marketplace/item/12346"))

	// known digest, the identity format is part of the stored data contract
	assert.Equal(t, "acbd18db4cc2f85cedef654fccc4a4d8", AdID("foo"))
}

func TestUpsertResult_String(t *testing.T) {
	assert.Equal(t, "inserted", Inserted.String())
	assert.Equal(t, "updated", Updated.String())
}
