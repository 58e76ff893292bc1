package analysis

const jsonInstruction = `

Jawab hanya dengan JSON valid sesuai skema di atas, tanpa markdown.`

const analyzeCVPrompt = `Analisis CV berikut secara mendalam dan berikan penilaian profesional dalam bahasa Indonesia.

CV Content:
%s

Skema JSON:
{"overallScore": 0-100, "sections": [{"name": string, "score": 0-100, "feedback": string, "suggestions": [string]}],
 "strengths": [string], "weaknesses": [string], "recommendations": [string], "atsCompatibility": 0-100}

Bagian yang dinilai: Informasi Kontak, Ringkasan Profesional, Pengalaman Kerja, Pendidikan, Keterampilan.`

const jobMatchPrompt = `Analisis tingkat kesesuaian antara CV dan deskripsi pekerjaan berikut dalam bahasa Indonesia.

CV Content:
%s

Job Description:
%s

Skema JSON:
{"overallMatch": 0-100, "matchingSkills": [string], "missingSkills": [string],
 "experienceMatch": {"score": 0-100, "feedback": string}, "educationMatch": {"score": 0-100, "feedback": string},
 "keywordAnalysis": {"foundKeywords": [string], "missingKeywords": [string], "keywordDensity": 0-100},
 "recommendations": [string], "improvementAreas": [string]}`

const atsPrompt = `Simulasikan bagaimana sistem ATS (Applicant Tracking System) akan memproses CV berikut dalam bahasa Indonesia.

CV Content:
%s

%s

Skema JSON:
{"overallAtsScore": 0-100,
 "parsingResults": {"contactInfo": {"extracted": bool, "issues": [string]}, "workExperience": {...}, "education": {...}, "skills": {...}},
 "keywordMatching": {"score": 0-100, "matchedKeywords": [string], "missedKeywords": [string]},
 "formatIssues": [string], "recommendations": [string], "atsCompatibilityTips": [string]}`

const careerPrompt = `Berikan saran karir yang komprehensif berdasarkan profil berikut dalam bahasa Indonesia.

CV Content: %s
Current Role: %s
Target Industry: %s
Experience Level: %s

Skema JSON:
{"currentLevel": string,
 "careerPaths": [{"title": string, "description": string, "timeframe": string, "requiredSkills": [string], "salaryRange": string, "growthPotential": 1-5}],
 "skillGaps": [{"skill": string, "importance": "Tinggi"|"Sedang"|"Rendah", "learningResources": [string]}],
 "industryTrends": [string], "nextSteps": [string], "certifications": [string]}

Berikan 3-5 jalur karir yang realistis untuk pasar kerja Indonesia.`

const rewritePrompt = `Tulis ulang bagian CV berikut agar lebih profesional, menarik, dan sesuai standar industri Indonesia.

Bagian: %s
Konten Asli: %s
%s

Berikan hasil yang siap digunakan langsung di CV, tanpa penjelasan tambahan.`
