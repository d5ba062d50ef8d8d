package papers

// catalog фиксированный список прошлых экзаменационных работ. File задается относительно PAPERS_PATH.
var catalog = []Paper{
	{Grade: "Grade 6", Subject: "History", Term: "Term 1", File: "Grade 6_History_Term 1.pdf"},
	{Grade: "Grade 6", Subject: "History", Term: "Term 2", File: "Grade 6_History_Term 2.pdf"},
	{Grade: "Grade 6", Subject: "History", Term: "Term 3", File: "Grade 6_History_Term 3.pdf"},
	{Grade: "Grade 6", Subject: "Maths", Term: "Term 1", File: "Grade 6_Maths_Term 1.pdf"},
	{Grade: "Grade 6", Subject: "Maths", Term: "Term 2", File: "Grade 6_Maths_Term 2.pdf"},
	{Grade: "Grade 6", Subject: "Maths", Term: "Term 3", File: "Grade 6_Maths_Term 3.pdf"},
	{Grade: "Grade 6", Subject: "Science", Term: "Term 1", File: "Grade 6_Science_Term 1.pdf"},
	{Grade: "Grade 6", Subject: "Science", Term: "Term 2", File: "Grade 6_Science_Term 2.pdf"},
	{Grade: "Grade 6", Subject: "Sinhala", Term: "Term 1", File: "Grade 6_Sinhala_Term 1.pdf"},
	{Grade: "Grade 6", Subject: "Sinhala", Term: "Term 2", File: "Grade 6_Sinhala_Term 2.pdf"},
	{Grade: "Grade 6", Subject: "Sinhala", Term: "Term 3", File: "Grade 6_Sinhala_Term 3.pdf"},
	{Grade: "Grade 6", Subject: "Art", Term: "Term 1", File: "Grade 6_Art_Term 1.pdf"},
	{Grade: "Grade 6", Subject: "Art", Term: "Term 2", File: "Grade 6_Art_Term 2.pdf"},
	{Grade: "Grade 6", Subject: "Art", Term: "Term 3", File: "Grade 6_Art_Term 3.pdf"},
	{Grade: "Grade 6", Subject: "English", Term: "Term 1", File: "Grade 6_English_Term 1.pdf"},
	{Grade: "Grade 6", Subject: "English", Term: "Term 2", File: "Grade 6_English_Term 2.pdf"},
	{Grade: "Grade 6", Subject: "English", Term: "Term 3", File: "Grade 6_English_Term 3.pdf"},
	{Grade: "Grade 6", Subject: "Geography", Term: "Term 1", File: "Grade 6_Geography_Term 1.pdf"},
	{Grade: "Grade 6", Subject: "Geography", Term: "Term 2", File: "Grade 6_Geography_Term 2.pdf"},
	{Grade: "Grade 6", Subject: "Geography", Term: "Term 3", File: "Grade 6_Geography_Term 3.pdf"},
	{Grade: "Grade 6", Subject: "Civic", Term: "Term 1", File: "Grade 6_Civic_Term 1.pdf"},
	{Grade: "Grade 6", Subject: "Civic", Term: "Term 2", File: "Grade 6_Civic_Term 2.pdf"},
	{Grade: "Grade 7", Subject: "History", Term: "Term 1", File: "Grade 7_History_Term 1.pdf"},
	{Grade: "Grade 7", Subject: "History", Term: "Term 2", File: "Grade 7_History_Term 2.pdf"},
	{Grade: "Grade 7", Subject: "History", Term: "Term 3", File: "Grade 7_History_Term 3.pdf"},
	{Grade: "Grade 7", Subject: "Maths", Term: "Term 1", File: "Grade 7_Maths_Term 1.pdf"},
	{Grade: "Grade 7", Subject: "Maths", Term: "Term 2", File: "Grade 7_Maths_Term 2.pdf"},
	{Grade: "Grade 7", Subject: "Science", Term: "Term 1", File: "Grade 7_Science_Term 1.pdf"},
	{Grade: "Grade 7", Subject: "Science", Term: "Term 2", File: "Grade 7_Science_Term 2.pdf"},
	{Grade: "Grade 7", Subject: "Sinhala", Term: "Term 1", File: "Grade 7_Sinhala_Term 1.pdf"},
	{Grade: "Grade 7", Subject: "Sinhala", Term: "Term 2", File: "Grade 7_Sinhala_Term 2.pdf"},
	{Grade: "Grade 7", Subject: "Art", Term: "Term 1", File: "Grade 7_Art_Term 1.pdf"},
	{Grade: "Grade 7", Subject: "Art", Term: "Term 2", File: "Grade 7_Art_Term 2.pdf"},
	{Grade: "Grade 7", Subject: "Art", Term: "Term 3", File: "Grade 7_Art_Term 3.pdf"},
	{Grade: "Grade 7", Subject: "English", Term: "Term 1", File: "Grade 7_English_Term 1.pdf"},
	{Grade: "Grade 7", Subject: "English", Term: "Term 2", File: "Grade 7_English_Term 2.pdf"},
	{Grade: "Grade 7", Subject: "English", Term: "Term 3", File: "Grade 7_English_Term 3.pdf"},
	{Grade: "Grade 7", Subject: "Geography", Term: "Term 1", File: "Grade 7_Geography_Term 1.pdf"},
	{Grade: "Grade 7", Subject: "Civic", Term: "Term 1", File: "Grade 7_Civic_Term 1.pdf"},
	{Grade: "Grade 7", Subject: "Civic", Term: "Term 2", File: "Grade 7_Civic_Term 2.pdf"},
	{Grade: "Grade 8", Subject: "History", Term: "Term 1", File: "Grade 8_History_Term 1.pdf"},
	{Grade: "Grade 8", Subject: "History", Term: "Term 2", File: "Grade 8_History_Term 2.pdf"},
	{Grade: "Grade 8", Subject: "History", Term: "Term 3", File: "Grade 8_History_Term 3.pdf"},
	{Grade: "Grade 8", Subject: "Maths", Term: "Term 1", File: "Grade 8_Maths_Term 1.pdf"},
	{Grade: "Grade 8", Subject: "Maths", Term: "Term 2", File: "Grade 8_Maths_Term 2.pdf"},
	{Grade: "Grade 8", Subject: "Maths", Term: "Term 3", File: "Grade 8_Maths_Term 3.pdf"},
	{Grade: "Grade 8", Subject: "Science", Term: "Term 1", File: "Grade 8_Science_Term 1.pdf"},
	{Grade: "Grade 8", Subject: "Science", Term: "Term 2", File: "Grade 8_Science_Term 2.pdf"},
	{Grade: "Grade 8", Subject: "Science", Term: "Term 3", File: "Grade 8_Science_Term 3.pdf"},
	{Grade: "Grade 8", Subject: "Sinhala", Term: "Term 1", File: "Grade 7_Sinhala_Term 1.pdf"},
	{Grade: "Grade 8", Subject: "Sinhala", Term: "Term 2", File: "Grade 7_Sinhala_Term 2.pdf"},
	{Grade: "Grade 8", Subject: "Sinhala", Term: "Term 3", File: "Grade 7_Sinhala_Term 3.pdf"},
	{Grade: "Grade 8", Subject: "English", Term: "Term 2", File: "Grade 8_English_Term 2.pdf"},
	{Grade: "Grade 8", Subject: "English", Term: "Term 3", File: "Grade 8_English_Term 3.pdf"},
	{Grade: "Grade 8", Subject: "Geography", Term: "Term 1", File: "Grade 8_Geography_Term 1.pdf"},
	{Grade: "Grade 8", Subject: "Geography", Term: "Term 2", File: "Grade 8_Geography_Term 2.pdf"},
	{Grade: "Grade 8", Subject: "Geography", Term: "Term 2", File: "Grade 8_Geography_Term 3.pdf"},
	{Grade: "Grade 8", Subject: "Civic", Term: "Term 1", File: "Grade 7_Civic_Term 1.pdf"},
	{Grade: "Grade 8", Subject: "Civic", Term: "Term 2", File: "Grade 7_Civic_Term 2.pdf"},
	{Grade: "Grade 8", Subject: "Civic", Term: "Term 3", File: "Grade 7_Civic_Term 3.pdf"},
	{Grade: "Grade 9", Subject: "History", Term: "Term 1", File: "Grade 9_History_Term 1.pdf"},
	{Grade: "Grade 9", Subject: "History", Term: "Term 2", File: "Grade 9_History_Term 2.pdf"},
	{Grade: "Grade 9", Subject: "History", Term: "Term 3", File: "Grade 9_History_Term 3.pdf"},
	{Grade: "Grade 9", Subject: "Maths", Term: "Term 1", File: "Grade 9_Maths_Term 1.pdf"},
	{Grade: "Grade 9", Subject: "Maths", Term: "Term 2", File: "Grade 9_Maths_Term 2.pdf"},
	{Grade: "Grade 9", Subject: "Maths", Term: "Term 3", File: "Grade 9_Maths_Term 3.pdf"},
	{Grade: "Grade 9", Subject: "Science", Term: "Term 2", File: "Grade 9_Science_Term 1.pdf"},
	{Grade: "Grade 9", Subject: "Science", Term: "Term 3", File: "Grade 9_Science_Term 3.pdf"},
	{Grade: "Grade 9", Subject: "Sinhala", Term: "Term 1", File: "Grade 9_Sinhala_Term 2.pdf"},
	{Grade: "Grade 9", Subject: "Sinhala", Term: "Term 2", File: "Grade 9_Sinhala_Term 3.pdf"},
	{Grade: "Grade 9", Subject: "English", Term: "Term 1", File: "Grade 9_English_Term 1.pdf"},
	{Grade: "Grade 9", Subject: "English", Term: "Term 2", File: "Grade 9_English_Term 2.pdf"},
}
