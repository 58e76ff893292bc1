package analysis

import (
	"context"
	"strings"
)

// MockProvider serves fixed results. They are also the fallback objects
// used when the model is unavailable.
type MockProvider struct{}

// NewMockProvider creates a mock provider
func NewMockProvider() *MockProvider {
	return &MockProvider{}
}

// AnalyzeCV returns the canned CV review
func (MockProvider) AnalyzeCV(ctx context.Context, cvText string) (*CVAnalysis, error) {
	if strings.TrimSpace(cvText) == "" {
		return nil, errEmptyCV
	}
	a := mockCVAnalysis()
	a.IsMockData = true
	return a, nil
}

// MatchJob returns the canned job match
func (MockProvider) MatchJob(ctx context.Context, req JobMatchRequest) (*JobMatch, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	m := mockJobMatch()
	m.IsMockData = true
	return m, nil
}

// SimulateATS returns the canned ATS simulation
func (MockProvider) SimulateATS(ctx context.Context, req ATSRequest) (*ATSSimulation, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	s := mockATSSimulation()
	s.IsMockData = true
	return s, nil
}

// SuggestCareer returns canned career suggestions
func (MockProvider) SuggestCareer(ctx context.Context, req CareerRequest) (*CareerSuggestion, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	c := mockCareerSuggestion()
	c.IsMockData = true
	return c, nil
}

// RewriteSection returns the content unchanged
func (MockProvider) RewriteSection(ctx context.Context, req RewriteRequest) (*Rewrite, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return &Rewrite{
		RewrittenContent: strings.TrimSpace(req.Content),
		Meta:             Meta{IsMockData: true},
	}, nil
}

func mockCVAnalysis() *CVAnalysis {
	return &CVAnalysis{
		OverallScore: 75,
		Sections: []SectionScore{
			{
				Name:        "Informasi Kontak",
				Score:       90,
				Feedback:    "Informasi kontak lengkap dan mudah dibaca. Email dan nomor telepon tersedia dengan jelas.",
				Suggestions: []string{"Pertimbangkan menambahkan LinkedIn profile", "Pastikan format nomor telepon konsisten"},
			},
			{
				Name:     "Ringkasan Profesional",
				Score:    70,
				Feedback: "Ringkasan cukup baik namun bisa lebih spesifik tentang pencapaian dan nilai yang ditawarkan.",
				Suggestions: []string{
					"Tambahkan angka atau metrik pencapaian",
					"Sebutkan keahlian teknis yang relevan",
					"Buat lebih ringkas dan impactful",
				},
			},
			{
				Name:     "Pengalaman Kerja",
				Score:    80,
				Feedback: "Pengalaman kerja dijelaskan dengan baik, namun perlu lebih banyak detail tentang pencapaian spesifik.",
				Suggestions: []string{
					"Gunakan action verbs yang kuat",
					"Tambahkan hasil kuantitatif",
					"Fokus pada kontribusi dan dampak",
				},
			},
			{
				Name:        "Pendidikan",
				Score:       85,
				Feedback:    "Bagian pendidikan sudah lengkap dengan informasi yang relevan.",
				Suggestions: []string{"Tambahkan IPK jika di atas 3.5", "Sebutkan prestasi akademik yang relevan"},
			},
			{
				Name:     "Keterampilan",
				Score:    65,
				Feedback: "Daftar keterampilan perlu lebih terstruktur dan spesifik sesuai dengan posisi yang dilamar.",
				Suggestions: []string{
					"Kategorikan keterampilan (teknis, soft skills)",
					"Tambahkan level kemahiran",
					"Sesuaikan dengan job requirements",
				},
			},
		},
		Strengths: []string{
			"Format CV yang rapi dan mudah dibaca",
			"Pengalaman kerja yang relevan dengan posisi",
			"Pendidikan yang sesuai dengan bidang",
			"Informasi kontak yang lengkap",
		},
		Weaknesses: []string{
			"Kurang pencapaian yang terukur",
			"Ringkasan profesional bisa lebih kuat",
			"Keterampilan perlu lebih spesifik",
			"Tidak ada portfolio atau project showcase",
		},
		Recommendations: []string{
			"Tambahkan section untuk project atau portfolio",
			"Gunakan lebih banyak angka dan metrik dalam deskripsi pengalaman",
			"Sesuaikan CV dengan setiap posisi yang dilamar",
			"Pertimbangkan menambahkan sertifikasi yang relevan",
			"Buat ringkasan profesional yang lebih compelling",
		},
		ATSCompatibility: 78,
	}
}

func mockJobMatch() *JobMatch {
	return &JobMatch{
		OverallMatch:   78,
		MatchingSkills: []string{"JavaScript", "React", "Node.js", "HTML/CSS", "Git", "Problem Solving", "Team Collaboration"},
		MissingSkills:  []string{"TypeScript", "Docker", "AWS", "GraphQL", "Testing Frameworks", "CI/CD"},
		ExperienceMatch: ScoredFeedback{
			Score:    75,
			Feedback: "Pengalaman kerja Anda menunjukkan kemampuan yang relevan dengan posisi ini. Namun, perlu lebih banyak pengalaman dengan teknologi cloud dan DevOps.",
		},
		EducationMatch: ScoredFeedback{
			Score:    85,
			Feedback: "Latar belakang pendidikan Anda sangat sesuai dengan posisi ini. Gelar di bidang teknologi informasi memberikan fondasi yang kuat.",
		},
		KeywordAnalysis: KeywordAnalysis{
			FoundKeywords:   []string{"JavaScript", "React", "Frontend", "Backend", "Database", "API", "Agile"},
			MissingKeywords: []string{"TypeScript", "Microservices", "Kubernetes", "DevOps", "Machine Learning"},
			KeywordDensity:  65,
		},
		Recommendations: []string{
			"Tambahkan pengalaman dengan TypeScript untuk meningkatkan kesesuaian",
			"Pelajari teknologi cloud seperti AWS atau Azure",
			"Dapatkan sertifikasi dalam teknologi yang disebutkan dalam job description",
			"Tambahkan project portfolio yang menunjukkan kemampuan full-stack development",
			"Tingkatkan pengalaman dengan testing frameworks dan CI/CD",
		},
		ImprovementAreas: []string{
			"Kurangnya pengalaman dengan teknologi cloud",
			"Perlu lebih banyak exposure ke DevOps practices",
			"Skill testing dan quality assurance perlu ditingkatkan",
			"Pengalaman dengan microservices architecture masih terbatas",
		},
	}
}

func mockATSSimulation() *ATSSimulation {
	return &ATSSimulation{
		OverallATSScore: 82,
		ParsingResults: ParsingResults{
			ContactInfo: ParsedSection{Extracted: true, Issues: []string{}},
			WorkExperience: ParsedSection{
				Extracted: true,
				Issues:    []string{"Tanggal tidak konsisten dalam format", "Beberapa deskripsi pekerjaan terlalu panjang"},
			},
			Education: ParsedSection{Extracted: true, Issues: []string{}},
			Skills: ParsedSection{
				Extracted: false,
				Issues:    []string{"Skills tidak dikelompokkan dengan jelas", "Format bullet points tidak standar"},
			},
		},
		KeywordMatching: KeywordMatching{
			Score:           75,
			MatchedKeywords: []string{"JavaScript", "React", "Node.js", "Database", "API", "Git"},
			MissedKeywords:  []string{"TypeScript", "Docker", "AWS", "Testing", "Agile"},
		},
		FormatIssues: []string{
			"Penggunaan font yang tidak standar dapat menyulitkan parsing",
			"Tabel kompleks mungkin tidak terbaca dengan baik oleh ATS",
			"Beberapa section tidak memiliki header yang jelas",
		},
		Recommendations: []string{
			"Gunakan format tanggal yang konsisten (MM/YYYY)",
			"Kelompokkan skills dalam kategori yang jelas",
			"Gunakan bullet points standar untuk deskripsi pekerjaan",
			"Pastikan semua section memiliki header yang jelas",
			"Hindari penggunaan tabel kompleks",
			"Gunakan font standar seperti Arial atau Calibri",
		},
		ATSCompatibilityTips: []string{
			"Simpan CV dalam format .docx atau .pdf",
			"Gunakan template CV yang ATS-friendly",
			"Pastikan nama file CV mengandung nama Anda",
			"Hindari penggunaan header/footer yang kompleks",
			"Gunakan keyword yang relevan dengan posisi yang dilamar",
			"Pastikan informasi kontak mudah dibaca",
		},
	}
}

func mockCareerSuggestion() *CareerSuggestion {
	return &CareerSuggestion{
		CurrentLevel: "Mid-level",
		CareerPaths: []CareerPath{
			{
				Title:           "Senior Software Engineer",
				Description:     "Memimpin pengembangan fitur dan membimbing engineer junior.",
				Timeframe:       "1-2 tahun",
				RequiredSkills:  []string{"System Design", "Code Review", "Mentoring"},
				SalaryRange:     "Rp 20-35 juta/bulan",
				GrowthPotential: 4,
			},
			{
				Title:           "Engineering Manager",
				Description:     "Mengelola tim engineering dan menyelaraskan prioritas teknis dengan bisnis.",
				Timeframe:       "3-5 tahun",
				RequiredSkills:  []string{"People Management", "Project Planning", "Stakeholder Communication"},
				SalaryRange:     "Rp 35-60 juta/bulan",
				GrowthPotential: 5,
			},
			{
				Title:           "Solutions Architect",
				Description:     "Merancang arsitektur sistem untuk kebutuhan klien dan produk.",
				Timeframe:       "2-4 tahun",
				RequiredSkills:  []string{"Cloud Architecture", "Distributed Systems", "Technical Writing"},
				SalaryRange:     "Rp 30-50 juta/bulan",
				GrowthPotential: 4,
			},
		},
		SkillGaps: []SkillGap{
			{Skill: "Cloud Computing", Importance: "Tinggi", LearningResources: []string{"AWS Skill Builder", "Google Cloud Skills Boost"}},
			{Skill: "System Design", Importance: "Tinggi", LearningResources: []string{"Designing Data-Intensive Applications"}},
			{Skill: "Public Speaking", Importance: "Sedang", LearningResources: []string{"Komunitas tech meetup lokal"}},
		},
		IndustryTrends: []string{
			"Adopsi AI generatif di berbagai industri",
			"Pertumbuhan kebutuhan engineer cloud dan DevOps",
			"Meningkatnya kerja remote dan hybrid",
		},
		NextSteps: []string{
			"Perbarui CV dengan pencapaian terukur",
			"Ambil satu sertifikasi cloud dalam 6 bulan",
			"Bangun portfolio project open source",
		},
		Certifications: []string{
			"AWS Certified Solutions Architect",
			"Google Professional Cloud Developer",
			"Certified Kubernetes Application Developer",
		},
	}
}
