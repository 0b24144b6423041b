package validation

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type itemInput struct {
	Name  *string  `json:"name" validate:"required,min=3"`
	Price *float64 `json:"price" validate:"required,min=1"`
}

type sampleInput struct {
	Title *string     `json:"title" validate:"required,min=3,max=5"`
	Tags  []string    `json:"tags" validate:"required,nonempty"`
	Items []itemInput `json:"items" validate:"omitempty,nonempty,dive"`
}

var sampleTable = map[string]string{
	"title.min":      "Title is too short",
	"items.name.min": "Item name is too short",
}

func strPtr(s string) *string { return &s }

func TestMessages_RequiredUsesFieldPath(t *testing.T) {
	err := New().Struct(sampleInput{})
	require.Error(t, err)

	msgs := Messages(err, sampleTable)
	assert.Equal(t, []string{"title is Required", "tags is Required"}, msgs)
}

func TestMessages_TableAndFallback(t *testing.T) {
	price := 0.5
	in := sampleInput{
		Title: strPtr("ab"),
		Tags:  []string{},
		Items: []itemInput{{Name: strPtr("x"), Price: &price}},
	}

	msgs := Messages(New().Struct(in), sampleTable)

	assert.Equal(t, []string{
		"Title is too short",
		"tags must contain at least 1 element(s)",
		"Item name is too short",
		"items[0].price must be at least 1",
	}, msgs)
}

func TestMessages_EmptyOptionalSlice(t *testing.T) {
	in := sampleInput{Title: strPtr("abcd"), Tags: []string{"a"}, Items: []itemInput{}}

	msgs := Messages(New().Struct(in), sampleTable)

	assert.Equal(t, []string{"items must contain at least 1 element(s)"}, msgs)
}

func TestMessages_ValidInput(t *testing.T) {
	in := sampleInput{Title: strPtr("abcd"), Tags: []string{"a"}}

	assert.NoError(t, New().Struct(in))
	assert.Nil(t, Messages(nil, sampleTable))
}

func TestMessages_DecodeErrors(t *testing.T) {
	var in sampleInput

	err := json.Unmarshal([]byte(`{"title": 12}`), &in)
	assert.Equal(t, []string{"title has an invalid type"}, Messages(err, sampleTable))

	err = json.Unmarshal([]byte(`{"title": `), &in)
	require.Error(t, err)
	assert.Len(t, Messages(err, sampleTable), 1)

	err = json.Unmarshal([]byte(`{"title": "abc"`), &in)
	require.Error(t, err)
}

func TestReplaceField_MergesTypeMismatch(t *testing.T) {
	var in sampleInput
	decodeErr := json.Unmarshal([]byte(`{"title": 12, "tags": [], "items": [{"name": "x", "price": 2}]}`), &in)
	require.Error(t, decodeErr)

	typed := Issues(decodeErr, sampleTable)
	require.Len(t, typed, 1)
	assert.Equal(t, "title", typed[0].Path)

	merged := ReplaceField(Issues(New().Struct(in), sampleTable), typed[0])

	assert.Equal(t, []Issue{
		{Path: "title", Message: "title has an invalid type"},
		{Path: "tags", Message: "tags must contain at least 1 element(s)"},
		{Path: "items[0].name", Message: "Item name is too short"},
	}, merged)
}

func TestReplaceField_PrependsWhenFieldHasNoIssue(t *testing.T) {
	rest := []Issue{{Path: "tags", Message: "tags is Required"}}

	merged := ReplaceField(rest, Issue{Path: "items.price", Message: "items.price has an invalid type"})

	assert.Equal(t, "items.price has an invalid type", merged[0].Message)
	assert.Equal(t, "tags is Required", merged[1].Message)
}

func TestIssue_Within(t *testing.T) {
	assert.True(t, Issue{Path: "items[2].price"}.Within("items.price"))
	assert.True(t, Issue{Path: "items[0].name"}.Within("items"))
	assert.False(t, Issue{Path: "itemsCount"}.Within("items"))
	assert.False(t, Issue{Message: "invalid json"}.Within(""))
}
