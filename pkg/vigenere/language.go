package vigenere

// Language describes the letter statistics of a plaintext language.
type Language struct {
	Name string

	// Frequencies[i] is the relative frequency of letter 'A'+i.
	Frequencies [26]float64

	// IoC is the index of coincidence of typical text.
	IoC float64
}

// English letter frequencies.
var English = Language{
	Name: "english",
	Frequencies: [26]float64{
		0.0804, 0.0148, 0.0334, 0.0382, 0.1249, 0.0240, 0.0187, // A-G
		0.0505, 0.0757, 0.0016, 0.0054, 0.0407, 0.0251, 0.0723, // H-N
		0.0764, 0.0214, 0.0012, 0.0628, 0.0651, 0.0928, 0.0273, // O-U
		0.0105, 0.0168, 0.0023, 0.0166, 0.0009, // V-Z
	},
	IoC: 0.067,
}
