package extract

import "job-assistant/internal/domain"

// JobChain returns the three-pass chain for job postings:
// initial facts, detailed keyword/ATS analysis, comprehensive summary.
func JobChain() Chain {
	return Chain{Name: "job", Passes: []Pass{
		mustPass("initial", domain.KindJobInitial, 2000, jobInitialPrompt),
		mustPass("detailed", domain.KindJobDetailed, 2000, jobDetailedPrompt),
		mustPass("summary", domain.KindJobSummary, 2000, jobSummaryPrompt),
	}}
}

// ResumeChain returns the three-pass chain for resumes.
func ResumeChain() Chain {
	return Chain{Name: "resume", Passes: []Pass{
		mustPass("initial", domain.KindResumeInitial, 4000, resumeInitialPrompt),
		mustPass("detailed", domain.KindResumeDetailed, 4000, resumeDetailedPrompt),
		mustPass("summary", domain.KindResumeSummary, 4000, resumeSummaryPrompt),
	}}
}

const jobInitialPrompt = `Analyze this job description and extract key information in EXACTLY this format:

Job Description:
{{.Text}}

STRICT OUTPUT FORMAT (Return ONLY this JSON object):
{
    "company_name": "Company Name",
    "job_title": "Job Title",
    "job_location": "Location (remote/hybrid/onsite, city, country)",
    "company_description": "Brief description of the company",
    "job_summary": "Brief summary of the job role",
    "department": "Department or team",
    "reporting_to": "Position reports to",
    "employment_type": "Full-time/Part-time/Contract",
    "technical_skills": ["skill1", "skill2"],
    "soft_skills": ["skill1", "skill2"],
    "required_experience": "X years",
    "education_requirements": ["requirement1", "requirement2"],
    "certifications": ["certification1", "certification2"],
    "responsibilities": ["responsibility1", "responsibility2"],
    "benefits": ["benefit1", "benefit2"],
    "salary_range": "Salary range if mentioned",
    "application_deadline": "Deadline if mentioned"
}

STRICT RULES:
1. Return ONLY the JSON object, no other text
2. ALL keys must be present in the response
3. Extract as much detail as possible from the job description
4. If information is not available, use empty string or empty array
5. Do not include any explanatory text or markdown
`

const jobDetailedPrompt = `Perform a detailed analysis of this job description for ATS optimization.

Job Description:
{{.Text}}

Initial Analysis:
{{.Prior.initial}}

STRICT OUTPUT FORMAT (Return ONLY this JSON object):
{
    "keyword_ranking": [["keyword1", 9], ["keyword2", 8]],
    "missing_keywords": [],
    "existing_keywords": [],
    "industry_specific_terms": ["term1", "term2"],
    "company_values": ["value1", "value2"],
    "company_culture": "Description of company culture",
    "growth_opportunities": "Description of growth opportunities",
    "key_challenges": ["challenge1", "challenge2"],
    "ideal_candidate_profile": "Description of ideal candidate",
    "ats_optimization_tips": ["tip1", "tip2"],
    "application_success_factors": ["factor1", "factor2"]
}

STRICT RULES:
1. Return ONLY the JSON object, no other text
2. ALL keys must be present in the response
3. keyword_ranking: List of [keyword, importance_score] pairs, score from 1-10, include at least 15 keywords
4. missing_keywords: Common keywords in this industry that are missing from the job description
5. existing_keywords: Important keywords that are already present in the job description
6. Focus on providing detailed, actionable insights for job applicants
7. Do not include any explanatory text or markdown
`

const jobSummaryPrompt = `Create a comprehensive summary of this job posting that would help a candidate understand the role and prepare for an application.

Job Description:
{{.Text}}

Initial Analysis:
{{.Prior.initial}}

Detailed Analysis:
{{.Prior.detailed}}

STRICT OUTPUT FORMAT (Return ONLY this JSON object):
{
    "executive_summary": "A concise 3-4 sentence overview of the position",
    "key_qualifications_summary": "Summary of the most important qualifications",
    "company_overview": "Brief overview of the company and its culture",
    "role_importance": "Why this role is important to the company",
    "success_metrics": "How success would be measured in this role",
    "career_path": "Potential career progression from this role",
    "interview_preparation_tips": ["tip1", "tip2"],
    "application_advice": "Advice for applying to this specific role"
}

STRICT RULES:
1. Return ONLY the JSON object, no other text
2. ALL keys must be present in the response
3. Be specific, detailed, and actionable in your summaries
4. Focus on helping the candidate understand the role deeply
5. Do not include any explanatory text or markdown
`

const resumeInitialPrompt = `Analyze this resume and extract key information in EXACTLY this format:

Resume Text:
{{.Text}}

STRICT OUTPUT FORMAT (Return ONLY this JSON object):
{
    "personal_info": {
        "name": "Full Name",
        "email": "email@example.com",
        "phone": "phone number",
        "location": "City, State",
        "linkedin": "LinkedIn profile URL if present",
        "portfolio": "Portfolio/website URL if present",
        "github": "GitHub profile if present"
    },
    "summary": "Professional summary",
    "skills": {
        "technical": ["skill1", "skill2"],
        "soft": ["skill1", "skill2"],
        "languages": ["language1", "language2"],
        "tools": ["tool1", "tool2"],
        "frameworks": ["framework1", "framework2"],
        "methodologies": ["methodology1", "methodology2"],
        "domain_knowledge": ["domain1", "domain2"]
    },
    "experience": [
        {
            "title": "Job Title",
            "company": "Company Name",
            "location": "Job Location",
            "duration": "Start Date - End Date",
            "responsibilities": ["responsibility1", "responsibility2"],
            "achievements": ["achievement1", "achievement2"],
            "skills_used": ["skill1", "skill2"],
            "technologies": ["technology1", "technology2"],
            "impact": "Quantifiable impact if mentioned"
        }
    ],
    "education": [
        {
            "degree": "Degree Name",
            "institution": "Institution Name",
            "location": "Institution Location",
            "graduation_date": "Graduation Date",
            "gpa": "GPA if mentioned",
            "honors": ["honor1", "honor2"],
            "relevant_coursework": ["course1", "course2"],
            "activities": ["activity1", "activity2"]
        }
    ],
    "certifications": [
        {
            "name": "Certification Name",
            "issuer": "Issuing Organization",
            "date": "Date Obtained",
            "expiration": "Expiration Date if applicable"
        }
    ],
    "projects": [
        {
            "name": "Project Name",
            "description": "Project Description",
            "role": "Role in the project",
            "duration": "Project Duration",
            "technologies": ["tech1", "tech2"],
            "outcomes": ["outcome1", "outcome2"],
            "url": "Project URL if available"
        }
    ],
    "publications": [
        {
            "title": "Publication Title",
            "publisher": "Publisher",
            "date": "Publication Date",
            "url": "URL if available"
        }
    ],
    "awards": [
        {
            "title": "Award Title",
            "issuer": "Issuing Organization",
            "date": "Date Received",
            "description": "Brief description"
        }
    ],
    "languages": [
        {
            "language": "Language Name",
            "proficiency": "Proficiency Level"
        }
    ],
    "volunteer_experience": [
        {
            "organization": "Organization Name",
            "role": "Role",
            "duration": "Duration",
            "description": "Brief description"
        }
    ]
}

STRICT RULES:
1. Return ONLY the JSON object, no other text
2. ALL keys must be present in the response
3. Extract ALL information mentioned in the resume
4. If a section is not present in the resume, include the key with an empty array or appropriate default value
5. Do not include any explanatory text or markdown
`

const resumeDetailedPrompt = `Perform a detailed analysis of this resume for job application readiness.

Resume Text:
{{.Text}}

Initial Analysis:
{{.Prior.initial}}

STRICT OUTPUT FORMAT (Return ONLY this JSON object):
{
    "keywords": ["keyword1", "keyword2"],
    "strengths": [
        {
            "strength": "Strength description",
            "evidence": "Evidence from resume"
        }
    ],
    "achievements": [
        {
            "achievement": "Achievement description",
            "impact": "Quantifiable impact"
        }
    ],
    "skill_proficiency": [
        {
            "skill": "Skill name",
            "level": "Beginner/Intermediate/Advanced/Expert",
            "evidence": "Evidence from resume"
        }
    ],
    "experience_summary": {
        "total_years": "Total years of experience",
        "industries": ["industry1", "industry2"],
        "company_sizes": ["startup", "enterprise", "etc"],
        "roles": ["role category 1", "role category 2"]
    },
    "gaps": [
        {
            "type": "skill/experience/education gap",
            "description": "Description of the gap",
            "recommendation": "How to address it"
        }
    ],
    "ats_score": {
        "formatting": "score out of 10",
        "keyword_optimization": "score out of 10",
        "content_quality": "score out of 10",
        "overall": "score out of 10"
    },
    "improvement_suggestions": [
        {
            "section": "Section name",
            "issue": "Issue description",
            "suggestion": "Improvement suggestion"
        }
    ]
}

STRICT RULES:
1. Return ONLY the JSON object, no other text
2. ALL keys must be present in the response
3. Be specific and detailed in your analysis
4. Focus on ATS optimization and job application readiness
5. Do not include any explanatory text or markdown
`

const resumeSummaryPrompt = `Create a comprehensive summary of this resume that highlights the candidate's strengths and potential.

Resume Text:
{{.Text}}

Initial Analysis:
{{.Prior.initial}}

Detailed Analysis:
{{.Prior.detailed}}

STRICT OUTPUT FORMAT (Return ONLY this JSON object):
{
    "professional_snapshot": "A concise 3-4 sentence overview of the candidate",
    "unique_selling_points": ["point1", "point2"],
    "career_narrative": "A brief narrative of the candidate's career progression",
    "technical_expertise_summary": "Summary of technical expertise",
    "soft_skills_summary": "Summary of soft skills and interpersonal abilities",
    "achievement_highlights": "Highlights of key achievements",
    "potential_roles": ["role1", "role2"],
    "interview_talking_points": [
        {
            "topic": "Topic to discuss",
            "key_points": ["point1", "point2"]
        }
    ]
}

STRICT RULES:
1. Return ONLY the JSON object, no other text
2. ALL keys must be present in the response
3. Be specific, detailed, and highlight the candidate's strengths
4. Focus on what makes this candidate unique and valuable
5. Do not include any explanatory text or markdown
`
