package anki

const defaultCSS = `.card {
  font-family: arial;
  font-size: 20px;
  text-align: center;
  color: black;
  background-color: white;
}`

const (
	BasicModelName = "Basic"
	WordModelName  = "Subdeck Word"
)

// CreateBasicModel returns the two-field Front/Back model.
func CreateBasicModel() Model {
	return Model{
		Name: BasicModelName,
		Type: ModelStandard,
		Fields: []Field{
			{Name: "Front", Ord: 0},
			{Name: "Back", Ord: 1},
		},
		Templates: []Template{
			{
				Name: "Card 1",
				Ord:  0,
				QFmt: "{{Front}}",
				AFmt: "{{FrontSide}}\n\n<hr id=answer>\n\n{{Back}}",
			},
		},
		CSS: defaultCSS,
	}
}

// CreateWordModel returns the vocabulary model with Word, Translation,
// Pronunciation and Audio fields.
func CreateWordModel() Model {
	return Model{
		Name: WordModelName,
		Type: ModelStandard,
		Fields: []Field{
			{Name: "Word", Ord: 0},
			{Name: "Translation", Ord: 1},
			{Name: "Pronunciation", Ord: 2},
			{Name: "Audio", Ord: 3},
		},
		Templates: []Template{
			{
				Name: "Recognition",
				Ord:  0,
				QFmt: "<div class=word>{{Word}}</div>\n{{Audio}}",
				AFmt: "{{FrontSide}}\n\n<hr id=answer>\n\n<div class=translation>{{Translation}}</div>\n<div class=pronunciation>{{Pronunciation}}</div>",
			},
		},
		CSS: defaultCSS + `
.word { font-size: 32px; }
.pronunciation { color: #666; }`,
	}
}
