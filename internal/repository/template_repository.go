package repository

import (
	"skillverify_backend/internal/model"
	"sort"
)

// DefaultSkill 未知技能统一回退到该题库
const DefaultSkill = "Python"

// TemplateRepository 静态题库：skill → difficulty → 模板列表。
// 进程启动时构建一次，此后只读，可被任意并发请求共享。
type TemplateRepository struct {
	skills   map[string]map[model.DifficultyLevel][]model.QuestionTemplate
	aptitude []model.QuestionTemplate
	coding   []model.CodingTemplate
}

func NewTemplateRepository() *TemplateRepository {
	return &TemplateRepository{
		skills:   loadSkillTemplates(),
		aptitude: loadAptitudePool(),
		coding:   loadCodingTemplates(),
	}
}

// Lookup 返回指定技能与难度的模板列表。未知技能回退到 DefaultSkill，
// 回退只发生在这里，调用方不需要重复处理
func (r *TemplateRepository) Lookup(skill string, difficulty model.DifficultyLevel) []model.QuestionTemplate {
	buckets, ok := r.skills[skill]
	if !ok {
		buckets = r.skills[DefaultSkill]
	}
	return buckets[difficulty]
}

// HasSkill 判断题库中是否存在该技能
func (r *TemplateRepository) HasSkill(skill string) bool {
	_, ok := r.skills[skill]
	return ok
}

// Skills 返回已知技能列表（字典序）
func (r *TemplateRepository) Skills() []string {
	names := make([]string, 0, len(r.skills))
	for name := range r.skills {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// AptitudePool 通用能力题池
func (r *TemplateRepository) AptitudePool() []model.QuestionTemplate {
	return r.aptitude
}

// CodingTemplates 固定的 5 道编程题，顺序与分值（20/20/30/15/15）不变
func (r *TemplateRepository) CodingTemplates() []model.CodingTemplate {
	return r.coding
}

func loadSkillTemplates() map[string]map[model.DifficultyLevel][]model.QuestionTemplate {
	return map[string]map[model.DifficultyLevel][]model.QuestionTemplate{
		"Python": {
			model.DifficultyBeginner: {
				{
					Question:    "What is the output of: print(type([]))?",
					Options:     []string{"<class 'list'>", "<class 'dict'>", "<class 'tuple'>", "<class 'set'>"},
					Answer:      "<class 'list'>",
					Explanation: "[] creates an empty list, and type() returns the class type.",
				},
				{
					Question:    "Which keyword is used to define a function in Python?",
					Options:     []string{"function", "def", "func", "define"},
					Answer:      "def",
					Explanation: "The 'def' keyword is used to define functions in Python.",
				},
				{
					Question:    "What is the correct file extension for Python files?",
					Options:     []string{".pyth", ".pt", ".py", ".pe"},
					Answer:      ".py",
					Explanation: "Python source files use the .py extension.",
				},
				{
					Question:    "How do you insert comments in Python code?",
					Options:     []string{"//", "#", "/* */", "--"},
					Answer:      "#",
					Explanation: "Python uses the # symbol for single-line comments.",
				},
				{
					Question:    "Which of these is NOT a core data type in Python?",
					Options:     []string{"List", "Dictionary", "Tuple", "Class"},
					Answer:      "Class",
					Explanation: "Class is a blueprint for objects, not a primitive/core data type like List or Tuple.",
				},
				{
					Question:    "What is the output of: 3 ** 2?",
					Options:     []string{"6", "9", "5", "8"},
					Answer:      "9",
					Explanation: "** is the exponentiation operator (3 to the power of 2).",
				},
			},
			model.DifficultyIntermediate: {
				{
					Question: "What is a list comprehension in Python?",
					Options: []string{
						"A way to create lists using a compact syntax",
						"A method to compress lists",
						"A function to understand lists",
						"A debugging tool",
					},
					Answer:      "A way to create lists using a compact syntax",
					Explanation: "List comprehensions provide a concise way to create lists based on existing lists.",
				},
				{
					Question: "What is the purpose of the 'self' keyword?",
					Options: []string{
						"It refers to the class itself",
						"It refers to the instance of the class",
						"It is a reserved keyword for import",
						"It makes a variable global",
					},
					Answer:      "It refers to the instance of the class",
					Explanation: "self represents the instance of the class and binds attributes with the given arguments.",
				},
				{
					Question:    "Which collection type is immutable?",
					Options:     []string{"List", "Set", "Dictionary", "Tuple"},
					Answer:      "Tuple",
					Explanation: "Tuples are immutable sequences, unlike lists or dictionaries.",
				},
				{
					Question: "What does the *args parameter do?",
					Options: []string{
						"Passes keyword arguments",
						"Passes a variable number of non-keyword arguments",
						"Multiplies arguments",
						"Imports arguments",
					},
					Answer:      "Passes a variable number of non-keyword arguments",
					Explanation: "*args allows you to pass a variable number of positional arguments to a function.",
				},
				{
					Question:    "How do you handle exceptions in Python?",
					Options:     []string{"try-except", "do-catch", "try-catch", "catch-throw"},
					Answer:      "try-except",
					Explanation: "Python uses try and except blocks to handle errors and exceptions.",
				},
				{
					Question: "What is a decorator?",
					Options: []string{
						"A function that modifies the behavior of another function",
						"A design pattern for classes",
						"A UI component",
						"A variable type",
					},
					Answer:      "A function that modifies the behavior of another function",
					Explanation: "Decorators allow you to wrap another function in order to extend the behavior of the wrapped function.",
				},
			},
			model.DifficultyAdvanced: {
				{
					Question: "What is the difference between __str__ and __repr__?",
					Options: []string{
						"__str__ is for end users, __repr__ is for developers",
						"They are the same",
						"__str__ is faster",
						"__repr__ is deprecated",
					},
					Answer:      "__str__ is for end users, __repr__ is for developers",
					Explanation: "__str__ returns a readable string, __repr__ returns an unambiguous representation.",
				},
				{
					Question: "What is the Global Interpreter Lock (GIL)?",
					Options: []string{
						"A lock that prevents multiple threads from executing bytecodes at once",
						"A security feature",
						"A database lock",
						"A module importer",
					},
					Answer:      "A lock that prevents multiple threads from executing bytecodes at once",
					Explanation: "The GIL is a mutex that protects access to Python objects, preventing multiple threads from executing Python bytecodes at once.",
				},
				{
					Question: "What is a generator in Python?",
					Options: []string{
						"A function that returns an iterator using 'yield'",
						"A tool to create lists",
						"A random number generator",
						"A compiler",
					},
					Answer:      "A function that returns an iterator using 'yield'",
					Explanation: "Generators are functions that return an iterator and yield a sequence of values one at a time.",
				},
				{
					Question: "What is the result of using 'is' vs '=='?",
					Options: []string{
						"'is' checks identity, '==' checks equality",
						"'is' checks equality, '==' checks identity",
						"They are identical",
						"'is' is deprecated",
					},
					Answer:      "'is' checks identity, '==' checks equality",
					Explanation: "'is' checks if two variables point to the same object in memory, '==' checks if their values are equal.",
				},
				{
					Question: "What is correct about Python's memory management?",
					Options: []string{
						"It uses manual memory management",
						"It uses private heap space and garbage collection",
						"It relies solely on OS",
						"It has no memory management",
					},
					Answer:      "It uses private heap space and garbage collection",
					Explanation: "Python memory management involves a private heap containing all Python objects and data structures, managed by the Python memory manager.",
				},
				{
					Question:    "What are metaclasses?",
					Options:     []string{"Classes of classes", "Special methods", "Abstract base classes", "Imported modules"},
					Answer:      "Classes of classes",
					Explanation: "A metaclass is a class whose instances are classes. It defines how a class behaves.",
				},
			},
		},
		"JavaScript": {
			model.DifficultyBeginner: {
				{
					Question: "What does 'let' keyword do in JavaScript?",
					Options: []string{
						"Declares a block-scoped variable",
						"Declares a constant",
						"Declares a global variable",
						"Imports a module",
					},
					Answer:      "Declares a block-scoped variable",
					Explanation: "'let' declares a block-scoped local variable.",
				},
			},
			model.DifficultyIntermediate: {
				{
					Question: "What is a closure in JavaScript?",
					Options: []string{
						"A function with access to outer scope",
						"A way to close files",
						"An error handling mechanism",
						"A loop terminator",
					},
					Answer:      "A function with access to outer scope",
					Explanation: "A closure gives you access to an outer function's scope from an inner function.",
				},
			},
			model.DifficultyAdvanced: {
				{
					Question: "What is the event loop in JavaScript?",
					Options: []string{
						"Mechanism for handling async operations",
						"A for loop variant",
						"An event listener",
						"A debugging tool",
					},
					Answer:      "Mechanism for handling async operations",
					Explanation: "The event loop handles asynchronous callbacks in JavaScript.",
				},
			},
		},
		"React": {
			model.DifficultyBeginner: {
				{
					Question: "What is JSX in React?",
					Options: []string{
						"JavaScript XML syntax extension",
						"A CSS framework",
						"A testing library",
						"A state management tool",
					},
					Answer:      "JavaScript XML syntax extension",
					Explanation: "JSX is a syntax extension that allows writing HTML-like code in JavaScript.",
				},
			},
			model.DifficultyIntermediate: {
				{
					Question: "What is the purpose of useEffect hook?",
					Options: []string{
						"Handle side effects in functional components",
						"Create state variables",
						"Define component props",
						"Style components",
					},
					Answer:      "Handle side effects in functional components",
					Explanation: "useEffect is used for side effects like data fetching, subscriptions, etc.",
				},
			},
			model.DifficultyAdvanced: {
				{
					Question: "What is React reconciliation?",
					Options: []string{
						"Process of updating the DOM efficiently",
						"A state management pattern",
						"A routing mechanism",
						"A testing strategy",
					},
					Answer:      "Process of updating the DOM efficiently",
					Explanation: "Reconciliation is React's algorithm for efficiently updating the DOM.",
				},
			},
		},
	}
}

func loadAptitudePool() []model.QuestionTemplate {
	return []model.QuestionTemplate{
		{
			Question:    "What is the next number in the series: 2, 4, 8, 16, ...?",
			Options:     []string{"30", "32", "34", "36"},
			Answer:      "32",
			Explanation: "The series doubles each time.",
		},
		{
			Question:    "If a shirt costs $20 after a 20% discount, what was the original price?",
			Options:     []string{"$22", "$24", "$25", "$30"},
			Answer:      "$25",
			Explanation: "x * 0.8 = 20 => x = 20 / 0.8 = 25",
		},
		{
			Question:    "Train A runs at 60km/h, Train B at 40km/h. How far apart are they after 2 hours if strictly moving away?",
			Options:     []string{"100km", "200km", "150km", "50km"},
			Answer:      "200km",
			Explanation: "(60 + 40) * 2 = 200km",
		},
		{
			Question:    "Which word is the odd one out?",
			Options:     []string{"Apple", "Banana", "Carrot", "Grape"},
			Answer:      "Carrot",
			Explanation: "Carrot is a vegetable, others are fruits.",
		},
		{
			Question:    "Complete the series: 3, 5, 9, 17, ...",
			Options:     []string{"25", "33", "35", "41"},
			Answer:      "33",
			Explanation: "Difference doubles: +2, +4, +8, +16. 17+16=33.",
		},
		{
			Question:    "If P is the brother of Q, and Q is the sister of R, how is P related to R?",
			Options:     []string{"Brother", "Sister", "Father", "Cousin"},
			Answer:      "Brother",
			Explanation: "P is male (brother), so P is R's brother.",
		},
	}
}

func loadCodingTemplates() []model.CodingTemplate {
	return []model.CodingTemplate{
		{
			IDSuffix:     "code-js",
			Skill:        "JavaScript",
			Question:     "JavaScript (Medium): Write a function 'flattenArray' that takes a nested array and returns a flat array along with its depth.",
			Difficulty:   model.DifficultyIntermediate,
			Explanation:  "Requires recursion or stack-based flattening.",
			Points:       20,
			CodeTemplate: "function flattenArray(arr) {\n    // Write your code here\n}",
		},
		{
			IDSuffix:     "code-py",
			Skill:        "Python",
			Question:     "Python: Write a function 'process_data' that takes a list of dictionaries and returns a summary statistic (e.g., average age).",
			Difficulty:   model.DifficultyIntermediate,
			Explanation:  "Requires list processing and aggregation.",
			Points:       20,
			CodeTemplate: "def process_data(data):\n    # Write your code here\n    pass",
		},
		{
			// Skill 留空：按请求者的主技能作答
			IDSuffix:     "code-algo",
			Question:     "Algorithmic Challenge (Preferred Language): Implement a Binary Search algorithm to find a target in a sorted array.",
			Difficulty:   model.DifficultyAdvanced,
			Explanation:  "Standard O(log n) search algorithm.",
			Points:       30,
			CodeTemplate: "# Write your solution in your preferred language\n# Binary Search Implementation",
		},
		{
			IDSuffix:     "code-html",
			Skill:        "HTML",
			Question:     "HTML: Create a semantic HTML5 structure for a Blog Post containing a header, main article, and footer.",
			Difficulty:   model.DifficultyBeginner,
			Explanation:  "Semantic tags like <article>, <header>, <footer>.",
			Points:       15,
			CodeTemplate: "<!-- Write your HTML structure here -->\n",
		},
		{
			IDSuffix:     "code-css",
			Skill:        "CSS",
			Question:     "CSS (Medium): Create a Flexbox layout where 3 items are evenly spaced and centered vertically in a container.",
			Difficulty:   model.DifficultyIntermediate,
			Explanation:  "Use display: flex, justify-content: space-between, align-items: center.",
			Points:       15,
			CodeTemplate: ".container {\n    /* Write your CSS here */\n}\n\n.item {\n    \n}",
		},
	}
}
