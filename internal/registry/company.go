package registry

import (
	"strings"

	"github.com/ErlanBelekov/companydesk/internal/domain"
)

type siretResponse struct {
	Etablissement *struct {
		Siren       string `json:"siren"`
		UniteLegale *struct {
			Denomination string `json:"denominationUniteLegale"`
			Association  string `json:"identifiantAssociationUniteLegale"`
		} `json:"uniteLegale"`
		Adresse *struct {
			Numero     string `json:"numeroVoieEtablissement"`
			TypeVoie   string `json:"typeVoieEtablissement"`
			Libelle    string `json:"libelleVoieEtablissement"`
			CodePostal string `json:"codePostalEtablissement"`
			Commune    string `json:"libelleCommuneEtablissement"`
		} `json:"adresseEtablissement"`
	} `json:"etablissement"`
}

// company flattens the registry payload. Missing sections leave fields empty.
func (r *siretResponse) company(siret string) *domain.Company {
	c := &domain.Company{SIRET: siret}

	e := r.Etablissement
	if e == nil {
		return c
	}
	c.SIREN = e.Siren

	if u := e.UniteLegale; u != nil {
		c.Name = u.Denomination
		c.TVA = u.Association
	}
	if a := e.Adresse; a != nil {
		c.Address = strings.Join(strings.Fields(strings.Join(
			[]string{a.Numero, a.TypeVoie, a.Libelle, a.CodePostal, a.Commune}, " ",
		)), " ")
	}
	return c
}
