package model

type Company struct {
	Name    string
	Tagline string
}
