package order

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDraftFromForm(t *testing.T) {
	now := time.Date(2025, 3, 10, 15, 30, 0, 0, time.Local)

	t.Run("Normal draft", func(t *testing.T) {
		d, err := DraftFromForm(FormInput{
			Kind:         KindNormal,
			Flavor:       "Chocolate",
			Size:         "Mediano",
			Quantity:     2,
			UnitPrice:    50,
			PriceSource:  SourceCatalog,
			DeliveryDate: "2025-03-12",
		}, "Centro", now)

		require.NoError(t, err)
		assert.NotEmpty(t, d.ID)
		assert.Equal(t, KindNormal, d.Kind)
		assert.Equal(t, "Centro", d.Branch)
		assert.Equal(t, time.Date(2025, 3, 12, 0, 0, 0, 0, time.Local), d.DeliveryDate)
		assert.Equal(t, 100.0, d.Total())
	})

	t.Run("Empty date defaults to tomorrow", func(t *testing.T) {
		d, err := DraftFromForm(FormInput{
			Kind:        KindNormal,
			Flavor:      "Fresa",
			Size:        "Grande",
			Quantity:    1,
			UnitPrice:   75,
			PriceSource: SourceCatalog,
		}, "Centro", now)

		require.NoError(t, err)
		assert.Equal(t, Tomorrow(now), d.DeliveryDate)
	})

	t.Run("Quantity floor of one", func(t *testing.T) {
		d, err := DraftFromForm(FormInput{
			Kind:        KindNormal,
			Flavor:      "Fresa",
			Size:        "Grande",
			Quantity:    0,
			UnitPrice:   75,
			PriceSource: SourceCatalog,
		}, "Centro", now)

		require.NoError(t, err)
		assert.Equal(t, 1, d.Quantity)
	})

	t.Run("Otro requires custom flavor", func(t *testing.T) {
		_, err := DraftFromForm(FormInput{
			Kind:        KindNormal,
			Flavor:      OtherOption,
			Size:        "Mediano",
			Quantity:    1,
			UnitPrice:   60,
			PriceSource: SourceManual,
		}, "Centro", now)

		assert.ErrorIs(t, err, ErrMissingFlavor)
	})

	t.Run("Unsafe free text rejected", func(t *testing.T) {
		_, err := DraftFromForm(FormInput{
			Kind:        KindClient,
			Flavor:      "Chocolate",
			Size:        "Mediano",
			Quantity:    1,
			UnitPrice:   50,
			PriceSource: SourceCatalog,
			Dedication:  "<b>Felicidades</b>",
		}, "Centro", now)

		assert.ErrorIs(t, err, ErrUnsafeInput)
	})

	t.Run("Client-only fields dropped for normal kind", func(t *testing.T) {
		d, err := DraftFromForm(FormInput{
			Kind:        KindNormal,
			Flavor:      "Chocolate",
			Size:        "Mediano",
			Quantity:    1,
			UnitPrice:   50,
			PriceSource: SourceCatalog,
			Color:       "Azul",
			Dedication:  "Felicidades",
			Photo:       []byte{1, 2, 3},
		}, "Centro", now)

		require.NoError(t, err)
		assert.Empty(t, d.Color)
		assert.Empty(t, d.Dedication)
		assert.Nil(t, d.Photo)
		assert.False(t, d.SupportsAttachment())
	})

	t.Run("Invalid kind", func(t *testing.T) {
		_, err := DraftFromForm(FormInput{Kind: Kind("mayorista")}, "Centro", now)
		assert.ErrorIs(t, err, ErrInvalidKind)
	})
}

func TestDraft_EffectiveFlavor(t *testing.T) {
	d := &Draft{Flavor: OtherOption, CustomFlavor: "Red Velvet"}
	assert.Equal(t, "Red Velvet", d.EffectiveFlavor())

	d = &Draft{Flavor: "Chocolate"}
	assert.Equal(t, "Chocolate", d.EffectiveFlavor())
}
