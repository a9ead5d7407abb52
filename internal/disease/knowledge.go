package disease

import (
	"sort"
	"strings"
)

type Severity string

const (
	SeverityNA       Severity = "N/A"
	SeverityLow      Severity = "Rendah"
	SeverityMedium   Severity = "Sedang"
	SeverityHigh     Severity = "Tinggi"
	SeverityCritical Severity = "Sangat Tinggi"
	SeverityUnknown  Severity = "unknown"
)

const (
	HealthyKey = "healthy"
	UnknownKey = "unknown"
)

type Treatment struct {
	Type    string   `json:"type"`
	Methods []string `json:"methods"`
}

type Entry struct {
	Key         string      `json:"key"`
	Name        string      `json:"name"`
	IsHealthy   bool        `json:"isHealthy"`
	Severity    Severity    `json:"severity"`
	Description string      `json:"description"`
	Symptoms    []string    `json:"symptoms"`
	Treatments  []Treatment `json:"treatments"`
	Prevention  []string    `json:"prevention"`
	// Known is false for entries synthesized from an unresolved tag.
	Known bool `json:"known"`
}

func (e Entry) clone() Entry {
	out := e
	out.Symptoms = append([]string{}, e.Symptoms...)
	out.Prevention = append([]string{}, e.Prevention...)
	out.Treatments = make([]Treatment, len(e.Treatments))
	for i, t := range e.Treatments {
		out.Treatments[i] = Treatment{Type: t.Type, Methods: append([]string{}, t.Methods...)}
	}
	return out
}

// KnowledgeBase is a read-only table of disease entries. It is safe for
// concurrent use since nothing mutates it after construction.
type KnowledgeBase struct {
	entries map[string]Entry
	order   []string
	// keys sorted longest first, ties in insertion order
	byLength []string
}

func NewKnowledgeBase(entries []Entry) *KnowledgeBase {
	kb := &KnowledgeBase{entries: make(map[string]Entry, len(entries))}
	for _, e := range entries {
		if _, dup := kb.entries[e.Key]; dup {
			continue
		}
		e.Known = true
		kb.entries[e.Key] = e.clone()
		kb.order = append(kb.order, e.Key)
	}

	kb.byLength = append([]string{}, kb.order...)
	sort.SliceStable(kb.byLength, func(i, j int) bool {
		return len(kb.byLength[i]) > len(kb.byLength[j])
	})
	return kb
}

func (kb *KnowledgeBase) Lookup(key string) (Entry, bool) {
	e, ok := kb.entries[key]
	if !ok {
		return Entry{}, false
	}
	return e.clone(), true
}

func (kb *KnowledgeBase) Keys() []string {
	return append([]string{}, kb.order...)
}

func (kb *KnowledgeBase) Entries() []Entry {
	out := make([]Entry, 0, len(kb.order))
	for _, k := range kb.order {
		out = append(out, kb.entries[k].clone())
	}
	return out
}

// SeverityStyle maps a severity label to a display style token.
func SeverityStyle(sev Severity) string {
	switch strings.ToLower(strings.TrimSpace(string(sev))) {
	case "tinggi":
		return "high"
	case "sangat tinggi":
		return "critical"
	case "sedang":
		return "medium"
	case "rendah":
		return "low"
	default:
		return "neutral"
	}
}

var defaultKB = NewKnowledgeBase(riceDiseases)

// Default returns the rice disease table shipped with the service.
func Default() *KnowledgeBase {
	return defaultKB
}

var riceDiseases = []Entry{
	{
		Key:         HealthyKey,
		Name:        "Padi Sehat",
		IsHealthy:   true,
		Severity:    SeverityNA,
		Description: "Tanaman padi dalam kondisi sehat tanpa tanda-tanda penyakit.",
		Prevention: []string{
			"Lanjutkan perawatan rutin dan pemupukan berimbang.",
			"Pantau kondisi tanaman secara berkala untuk deteksi dini.",
			"Jaga kebersihan area pertanian dari gulma dan sisa tanaman.",
			"Pastikan sistem drainase dan irigasi berfungsi dengan baik.",
		},
	},
	{
		Key:         "bacterial_leaf_blight",
		Name:        "Hawar Daun Bakteri (HDB)",
		Severity:    SeverityHigh,
		Description: "Disebabkan oleh bakteri Xanthomonas oryzae pv. oryzae. Sangat menular, terutama saat musim hujan.",
		Symptoms: []string{
			"Lesi kebasahan pada tepi daun yang meluas menjadi kuning hingga putih keabu-abuan.",
			"Daun mengering seperti terbakar (kresek).",
			"Pada serangan berat, bulir padi menjadi hampa.",
		},
		Treatments: []Treatment{
			{Type: "Bakterisida", Methods: []string{"Copper sulfate (0.2%)", "Streptomycin sulfate (100-200 ppm)", "Copper oxychloride (50% WP)"}},
			{Type: "Biologis", Methods: []string{"Pseudomonas fluorescens", "Bacillus subtilis"}},
			{Type: "Kultur Teknis", Methods: []string{"Perbaiki drainase", "Kurangi dosis nitrogen berlebih", "Sanitasi gulma dan sisa tanaman"}},
		},
		Prevention: []string{
			"Gunakan benih sehat dan varietas tahan (misal: Inpari 33, Ciherang).",
			"Rotasi tanaman.",
			"Atur jarak tanam agar tidak terlalu rapat.",
			"Hindari pemupukan Nitrogen (N) berlebihan.",
		},
	},
	{
		Key:         "brown_spot",
		Name:        "Bercak Coklat",
		Severity:    SeverityMedium,
		Description: "Disebabkan oleh jamur Bipolaris oryzae (Helminthosporium oryzae). Umumnya pada kondisi tanah kurang subur.",
		Symptoms: []string{
			"Bercak oval kecil berwarna coklat tua dengan pusat keabu-abuan pada daun.",
			"Bercak juga dapat muncul pada pelepah, tangkai malai, dan gabah.",
			"Pada serangan berat, daun menguning dan mati.",
		},
		Treatments: []Treatment{
			{Type: "Fungisida", Methods: []string{"Mancozeb (80% WP)", "Carbendazim (50% WP)", "Propiconazole (25% EC)"}},
			{Type: "Organik", Methods: []string{"Ekstrak daun nimba", "Pupuk hayati Trichoderma"}},
		},
		Prevention: []string{
			"Pemupukan berimbang (N, P, K, dan unsur mikro).",
			"Hindari kekurangan Kalium (K) dan Silika (Si).",
			"Gunakan benih sehat dan perlakukan benih dengan fungisida.",
			"Sanitasi sisa tanaman setelah panen.",
		},
	},
	{
		Key:         "narrow_brown_spot",
		Name:        "Bercak Coklat Sempit",
		Severity:    SeverityMedium,
		Description: "Disebabkan oleh jamur Cercospora janseana (Sphaerulina oryzina). Sering muncul pada daun tua.",
		Symptoms: []string{
			"Bercak sempit, pendek, linier berwarna coklat kemerahan sejajar tulang daun.",
			"Umumnya pada daun bendera menjelang panen.",
			"Dapat menurunkan kualitas gabah.",
		},
		Treatments: []Treatment{
			{Type: "Fungisida", Methods: []string{"Mancozeb (80% WP)", "Carbendazim (50% WP)", "Propiconazole (25% EC)"}},
			{Type: "Kultur Teknis", Methods: []string{"Tingkatkan sirkulasi udara (jarak tanam).", "Aplikasi pupuk Kalium (K) dan Silika (Si)."}},
		},
		Prevention: []string{
			"Pemupukan Kalium (K) yang cukup.",
			"Hindari kelembaban berlebih di sekitar tanaman.",
			"Sanitasi sisa tanaman dan gulma.",
		},
	},
	{
		Key:         "leaf_scald",
		Name:        "Hawar Daun (Leaf Scald)",
		Severity:    SeverityMedium,
		Description: "Disebabkan oleh jamur Monographella albescens (Microdochium oryzae). Terjadi pada ujung atau tepi daun.",
		Symptoms: []string{
			"Lesi dimulai dari ujung daun atau tepi, berbentuk oval memanjang atau tidak teratur dengan pola zonasi.",
			"Pusat lesi berwarna abu-abu keputihan, tepi coklat kemerahan.",
			"Daun tampak seperti tersiram air panas.",
		},
		Treatments: []Treatment{
			{Type: "Fungisida", Methods: []string{"Propiconazole (25% EC)", "Tebuconazole (25% SC)", "Azoxystrobin (25% SC)"}},
			{Type: "Biologis", Methods: []string{"Trichoderma viride", "Bacillus subtilis"}},
		},
		Prevention: []string{
			"Hindari pemupukan Nitrogen (N) berlebih.",
			"Jaga kelembaban tidak terlalu tinggi.",
			"Gunakan varietas yang relatif tahan.",
			"Sanitasi lahan.",
		},
	},
	{
		Key:         "leaf_blast",
		Name:        "Blas Daun",
		Severity:    SeverityHigh,
		Description: "Disebabkan oleh jamur Magnaporthe oryzae (Pyricularia oryzae). Sangat merusak pada semua fase pertumbuhan.",
		Symptoms: []string{
			"Bercak berbentuk belah ketupat (mata ikan) pada daun, dengan pusat abu-abu dan tepi coklat.",
			"Pada serangan berat, seluruh daun mengering.",
			"Dapat menyerang leher malai (blas leher) menyebabkan patah dan gabah hampa.",
		},
		Treatments: []Treatment{
			{Type: "Fungisida Sistemik", Methods: []string{"Tricyclazole (75% WP)", "Isoprothiolane (40% EC)", "Propiconazole (25% EC)"}},
			{Type: "Preventif", Methods: []string{"Kasugamycin + Copper oxychloride", "Aplikasi saat kondisi mendukung perkembangan penyakit."}},
		},
		Prevention: []string{
			"Tanam varietas tahan (misal: Inpari 32, Inpari 42).",
			"Hindari pemupukan Nitrogen (N) berlebihan, berikan Kalium (K) yang cukup.",
			"Perlakuan benih.",
			"Sanitasi dan pengelolaan sisa tanaman.",
		},
	},
	{
		Key:  "sheath_blight",
		Name: "Hawar Pelepah",
		// severity enum is closed; field reports put this between Sedang and Tinggi
		Severity:    SeverityHigh,
		Description: "Disebabkan oleh jamur Rhizoctonia solani. Berkembang baik pada kondisi lembab dan suhu hangat.",
		Symptoms: []string{
			"Bercak oval atau tidak teratur pada pelepah daun dekat permukaan air.",
			"Pusat bercak keabu-abuan atau keputihan, tepi coklat tua.",
			"Sering ditemukan sklerotia (struktur jamur) kecil berwarna coklat.",
			"Dapat menyebabkan tanaman rebah.",
		},
		Treatments: []Treatment{
			{Type: "Fungisida", Methods: []string{"Validamycin (3% L)", "Hexaconazole (5% EC)", "Propiconazole (25% EC)", "Pencycuron (25% WP)"}},
			{Type: "Biologis", Methods: []string{"Trichoderma spp.", "Pseudomonas fluorescens"}},
		},
		Prevention: []string{
			"Jarak tanam tidak terlalu rapat untuk sirkulasi udara.",
			"Drainase yang baik.",
			"Pemupukan berimbang, terutama Kalium (K).",
			"Sanitasi gulma dan sisa tanaman.",
		},
	},
	{
		Key:         "rice_hispa",
		Name:        "Penggerek Hispa",
		Severity:    SeverityMedium,
		Description: "Serangan hama kumbang Dicladispa armigera. Imago memakan permukaan daun, larva menggerek di dalam jaringan daun.",
		Symptoms: []string{
			"Bekas gerekan larva berupa garis-garis putih sejajar tulang daun.",
			"Imago membuat goresan memanjang pada permukaan atas daun.",
			"Ujung daun mengering dan berwarna keputihan.",
			"Pada serangan berat, seluruh daun tampak putih dan kering.",
		},
		Treatments: []Treatment{
			{Type: "Insektisida", Methods: []string{"Imidacloprid (17.8% SL)", "Thiamethoxam (25% WG)", "Fipronil (5% SC)"}},
			{Type: "Biologis", Methods: []string{"Beauveria bassiana", "Metarhizium anisopliae"}},
			{Type: "Mekanis", Methods: []string{"Pengumpulan imago dengan jaring serangga.", "Pemotongan ujung daun yang terserang berat."}},
		},
		Prevention: []string{
			"Tanam serempak.",
			"Penggunaan perangkap.",
			"Sanitasi gulma yang menjadi inang alternatif.",
			"Konservasi musuh alami.",
		},
	},
}
