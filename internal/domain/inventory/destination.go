package inventory

// FamilyDestinationRules sugiere el depósito destino de un movimiento según la familia del artículo.
// Es solo una preselección: el operador puede elegir otro destino.
var FamilyDestinationRules = map[string]string{
	"G":  "Generales",
	"XX": "Inmunoanalisis",
	"ID": "Inmunodiagnostico",
	"FB": "Microbiologia",
	"LP": "Limpieza",
	"AF": "Alejandra Fajardo",
	"CT": "Citometria",
}

// SuggestDestination busca la familia (sin distinguir mayúsculas) y devuelve el depósito sugerido
// con la grafía de available. Si la regla no existe o el depósito no está disponible devuelve "".
func SuggestDestination(family string, available []string) string {
	var suggested string
	for fam, wh := range FamilyDestinationRules {
		if SameName(fam, family) {
			suggested = wh
			break
		}
	}
	if suggested == "" {
		return ""
	}
	for _, a := range available {
		if SameName(a, suggested) {
			return a
		}
	}
	return ""
}
